// Command prefixindex inspects and administers prefix indexes stored in
// DynamoDB, S3 or MinIO.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
