// Package s3 provides Amazon S3 implementations of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("homcubes/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	archive := homcubes.NewArchive(store)
//
// # Features
//
//   - Range reads for partial fetches of large grids
//   - Multipart uploads for large diagrams
//   - Automatic pagination for listing
//   - DDBCommitStore: atomic LATEST pointer updates through DynamoDB
package s3
