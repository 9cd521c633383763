// Package connectors holds document sources that feed the ingestion
// pipeline. Each connector knows how to enumerate and watch one kind of
// source and turns what it finds into domain documents.
package connectors
