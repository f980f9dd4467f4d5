// Package sthree implements a storage.Store on S3 or an S3-compatible endpoint.
package sthree

import (
	"context"
	"io"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/storage"
	"github.com/oneconcern/gitfat/pkg/storage/status"
)

// PageSize of listings
const PageSize = 1000

// New S3 store
func New(option Option, options ...Option) (storage.Store, error) {
	fs := new(s3FS)
	option(fs)
	for _, apply := range options {
		apply(fs)
	}
	if fs.bucket == "" {
		return nil, status.ErrInvalidResource.Wrapf("no bucket specified")
	}

	sess, err := session.NewSession(fs.awsConfig)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	fs.s3 = s3.New(sess)
	fs.uploader = s3manager.NewUploaderWithClient(fs.s3)
	fs.downloader = s3manager.NewDownloaderWithClient(fs.s3)
	return fs, nil
}

type s3FS struct {
	bucket     string
	prefix     string
	acl        string
	awsConfig  *aws.Config
	s3         *s3.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader

	// set once the bucket is known to exist
	bucketFound atomic.Bool
}

func (s *s3FS) key(key string) string {
	return s.prefix + key
}

func (s *s3FS) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err == nil {
		return true, nil
	}
	err = toSentinelErrors(err)
	if !errors.Is(err, status.ErrNotExists) {
		return false, err
	}
	// HEAD responses carry no error code: a missing bucket reads as a missing key
	if err = s.checkBucket(ctx); err != nil {
		return false, err
	}
	return false, nil
}

func (s *s3FS) checkBucket(ctx context.Context) error {
	if s.bucketFound.Load() {
		return nil
	}
	_, err := s.s3.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		err = toSentinelErrors(err)
		if errors.Is(err, status.ErrNotExists) {
			return status.ErrMissingBucket.Wrapf("%s", s.bucket)
		}
		return err
	}
	s.bucketFound.Store(true)
	return nil
}

func (s *s3FS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return obj.Body, nil
}

// Download an object with concurrent ranged requests
func (s *s3FS) Download(ctx context.Context, key string, w io.WriterAt) (int64, error) {
	n, err := s.downloader.DownloadWithContext(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	return n, toSentinelErrors(err)
}

func (s *s3FS) Put(ctx context.Context, key string, rdr io.Reader) error {
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Body:   rdr,
	}
	if s.acl != "" {
		input.ACL = aws.String(s.acl)
	}
	_, err := s.uploader.UploadWithContext(ctx, input)
	return toSentinelErrors(err)
}

// Keys lists objects under the prefix of this store. Keys are returned without the prefix.
func (s *s3FS) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	eachPage := func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.StringValue(obj.Key), s.prefix)
			if key != "" && !strings.HasSuffix(key, "/") {
				keys = append(keys, key)
			}
		}
		return true
	}
	params := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int64(PageSize),
	}
	if s.prefix != "" {
		params.Prefix = aws.String(s.prefix)
	}

	if err := s.s3.ListObjectsV2PagesWithContext(ctx, params, eachPage); err != nil {
		return nil, toSentinelErrors(err)
	}
	return keys, nil
}

func (s *s3FS) String() string {
	return "s3@" + s.bucket + "/" + s.prefix
}
