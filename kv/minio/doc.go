// Package minio provides a kv.Store for MinIO and other S3-compatible object stores.
//
// The key layout matches package s3. Because not every S3-compatible server
// honors conditional writes, Put checks for an existing object before writing;
// two writers racing on the same record may both succeed.
//
// Example:
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	store := kvminio.NewStore(client, "indexes", "prod/")
package minio
