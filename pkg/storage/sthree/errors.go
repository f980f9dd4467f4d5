package sthree

import (
	"net/http"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/storage/status"
)

// codeErrors maps the S3 error codes git-fat tells apart.
// See https://docs.aws.amazon.com/AmazonS3/latest/API/ErrorResponses.html#ErrorCodeList
var codeErrors = map[string]*errors.Error{
	"NoSuchKey":         status.ErrNotExists,
	"NotFound":          status.ErrNotExists, // HEAD requests and minio
	"NoSuchBucket":      status.ErrMissingBucket,
	"InvalidBucketName": status.ErrInvalidResource,
}

var httpErrors = map[int]*errors.Error{
	http.StatusUnauthorized: status.ErrUnauthorized,
	http.StatusForbidden:    status.ErrForbidden,
	http.StatusNotFound:     status.ErrNotFound,
}

// toSentinelErrors wraps S3 request failures with the sentinels of the status package
func toSentinelErrors(err error) error {
	var rerr awserr.RequestFailure
	if err == nil || !errors.As(err, &rerr) {
		return err
	}
	if sentinel, ok := codeErrors[rerr.Code()]; ok {
		return sentinel.Wrap(rerr)
	}
	if sentinel, ok := httpErrors[rerr.StatusCode()]; ok {
		return sentinel.Wrap(rerr)
	}
	return status.ErrStorageAPI.Wrap(rerr)
}
