// Package services contains the core business logic: ingestion, retrieval,
// evaluation and the sample-data workflow. Services depend only on the port
// interfaces, never on concrete adapters.
package services
