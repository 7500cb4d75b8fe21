package initializers

import (
	"context"

	"github.com/pkg/errors"

	s3client "pto-bot-backend/s3"
)

func InitS3(ctx context.Context) (s3client.Provider, error) {
	client, err := s3client.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create s3 client")
	}
	if err = client.MakeBucket(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ensure report bucket")
	}
	return client, nil
}
