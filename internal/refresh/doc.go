// Package refresh drives the ingestion flow: fan out to every enabled
// marketplace per set, collect whichever observations succeeded, and
// append them to storage for later aggregation.
package refresh
