// Package minio provides a BlobStore backed by MinIO or any other
// S3-compatible object store (Ceph, Garage, SeaweedFS) through the MinIO
// client, without the AWS SDK.
//
//	store, err := minioblob.New("localhost:9000", "diagrams",
//	    minioblob.WithCredentials("minioadmin", "minioadmin"),
//	    minioblob.WithPrefix("homcubes/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	archive := homcubes.NewArchive(store)
package minio
