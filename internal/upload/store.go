package upload

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrObjectNotFound = errors.New("file not found")

// ObjectStore keeps uploaded bytes. Implementations return ErrObjectNotFound
// for unknown ids.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}

// GridFSStore stores images in a GridFS bucket, keeping the content type in
// the file metadata.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(client *mongo.Client, database string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(client.Database(database), options.GridFSBucket().SetName("images"))
	if err != nil {
		return nil, err
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", err
	}
	if err := stream.Close(); err != nil {
		return "", err
	}
	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected gridfs file id")
	}
	return id.Hex(), nil
}

func (s *GridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, "", ErrObjectNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", ErrObjectNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	contentType := "application/octet-stream"
	if meta := stream.GetFile().Metadata; meta != nil {
		if v, ok := meta.Lookup("contentType").StringValueOK(); ok {
			contentType = v
		}
	}
	return stream, contentType, nil
}
