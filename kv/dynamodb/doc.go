// Package dynamodb provides a kv.Store backed by Amazon DynamoDB.
//
// Each namespace maps onto its own table named TablePrefix+namespace. Tables
// are not created by this package; provision them with:
//
//	aws dynamodb create-table \
//	  --table-name people \
//	  --attribute-definitions AttributeName=pk,AttributeType=S AttributeName=rk,AttributeType=S \
//	  --key-schema AttributeName=pk,KeyType=HASH AttributeName=rk,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamodb
