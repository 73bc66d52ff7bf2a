//go:build integration

package minio

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

func TestRun_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := Run(ctx)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, c.Container)

	require.NoError(t, c.CreateBucket(ctx, "events"))

	client, err := c.S3Client(ctx)
	require.NoError(t, err)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String("events"),
		Key:    aws.String("order-42.json"),
		Body:   strings.NewReader(`{"kind":"created"}`),
	})
	require.NoError(t, err)

	got, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String("events"),
		Key:    aws.String("order-42.json"),
	})
	require.NoError(t, err)
	defer func() {
		_ = got.Body.Close()
	}()

	body, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"created"}`, string(body))

	buckets, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	require.NoError(t, err)
	require.Len(t, buckets.Buckets, 1)
	assert.Equal(t, "events", aws.ToString(buckets.Buckets[0].Name))
}
