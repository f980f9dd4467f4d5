package sthree

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws"
)

// Option for the S3 store
type Option func(*s3FS)

// Bucket name. A s3:// scheme is stripped.
func Bucket(bucket string) Option {
	return func(fs *s3FS) {
		fs.bucket = strings.TrimSuffix(strings.TrimPrefix(bucket, "s3://"), "/")
	}
}

// Prefix prepended to every key
func Prefix(prefix string) Option {
	return func(fs *s3FS) {
		fs.prefix = strings.TrimPrefix(prefix, "/")
	}
}

// ACL applied to uploaded objects, e.g. "bucket-owner-full-control"
func ACL(acl string) Option {
	return func(fs *s3FS) {
		fs.acl = acl
	}
}

// AWSConfig for the S3 client session
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}
