// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package symstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	crashsymlog "github.com/saferwall/crashsym/log"
)

// S3Store is a Source backed by an S3-compatible bucket, using the same
// <debugFile>/<debugID>/<debugFile> prefix as LocalStore. Only the
// gzip-packed <debugFile>.sym.gz object is fetched; an uncompressed
// <debugFile>.sym object is not looked up.
// Transient errors (timeouts, 5xx responses) are retried with bounded
// exponential backoff; a definite "object not found" is not.
type S3Store struct {
	Bucket     string
	downloader *s3manager.Downloader
	logger     *crashsymlog.Helper
}

// NewS3Store builds an S3Store against bucket using the default AWS
// session and credential chain.
func NewS3Store(bucket string, logger crashsymlog.Logger) (*S3Store, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "creating AWS session")
	}
	if logger == nil {
		logger = crashsymlog.NewFilter(crashsymlog.NewStdLogger(io.Discard), crashsymlog.FilterLevel(crashsymlog.LevelError))
	}
	return &S3Store{
		Bucket:     bucket,
		downloader: s3manager.NewDownloader(sess),
		logger:     crashsymlog.NewHelper(logger),
	}, nil
}

// Fetch implements Source.
func (s *S3Store) Fetch(ctx context.Context, debugFile, debugID string) ([]byte, error) {
	key := fmt.Sprintf("%s/%s/%s.sym.gz", debugFile, debugID, debugFile)

	var buf *aws.WriteAtBuffer
	attempts := 0
	op := func() error {
		attempts++
		buf = aws.NewWriteAtBuffer(nil)
		_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return backoff.Permanent(ErrSymbolNotFound)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	notify := func(err error, wait time.Duration) {
		s.logger.Warnf("fetching s3://%s/%s failed, retrying in %s: %v", s.Bucket, key, wait, err)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if stderrors.Is(err, ErrSymbolNotFound) {
			return nil, ErrSymbolNotFound
		}
		return nil, errors.Wrapf(err, "fetching s3://%s/%s after %d attempts", s.Bucket, key, attempts)
	}

	s.logger.Debugf("fetched %s from s3://%s/%s", humanize.Bytes(uint64(buf.Len())), s.Bucket, key)
	return buf.Bytes(), nil
}
