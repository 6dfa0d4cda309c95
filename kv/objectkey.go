package kv

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ObjectKey maps a record address onto an object-store key of the form
// root/namespace/<pk>/<rk>. Partition and row keys are path-escaped so that
// a listing of PartitionPrefix matches exactly one partition.
//
// Escaped segments are concatenated rather than joined: path.Join would
// collapse terms such as "." or "..".
func ObjectKey(root, namespace, partitionKey, rowKey string) string {
	return PartitionPrefix(root, namespace, partitionKey) + url.PathEscape(rowKey)
}

// PartitionPrefix returns the listing prefix of one partition.
func PartitionPrefix(root, namespace, partitionKey string) string {
	return NamespacePrefix(root, namespace) + url.PathEscape(partitionKey) + "/"
}

// NamespacePrefix returns the listing prefix of a namespace.
func NamespacePrefix(root, namespace string) string {
	return path.Join(root, namespace) + "/"
}

// ParseObjectKey recovers partition and row key from a key produced by ObjectKey.
func ParseObjectKey(root, namespace, key string) (partitionKey, rowKey string, err error) {
	rel, ok := strings.CutPrefix(key, NamespacePrefix(root, namespace))
	if !ok {
		return "", "", fmt.Errorf("kv: key %q outside namespace %q", key, namespace)
	}

	escapedPK, escapedRK, ok := strings.Cut(rel, "/")
	if !ok || strings.Contains(escapedRK, "/") {
		return "", "", fmt.Errorf("kv: malformed object key %q", key)
	}

	if partitionKey, err = url.PathUnescape(escapedPK); err != nil {
		return "", "", fmt.Errorf("kv: malformed partition key in %q: %w", key, err)
	}
	if rowKey, err = url.PathUnescape(escapedRK); err != nil {
		return "", "", fmt.Errorf("kv: malformed row key in %q: %w", key, err)
	}
	return partitionKey, rowKey, nil
}
