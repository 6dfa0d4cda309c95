// Package s3 provides a kv.Store backed by Amazon S3.
//
// Every record is one object at <prefix>/<namespace>/<escaped pk>/<escaped rk>,
// so a partition query is a single prefix listing. Conflict detection relies
// on S3 conditional writes (If-None-Match: *).
package s3
