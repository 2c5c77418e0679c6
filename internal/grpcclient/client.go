package grpcclient

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/example/faceauth/internal/embedder"
	"github.com/example/faceauth/internal/logging"
)

// jsonCodec frames messages as JSON so the embedder hop runs without
// generated protobuf stubs; the model server registers the same codec.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                               { return "json" }

const embedMethod = "/faceauth.Embedder/Embed"

type embedRequest struct {
	ImageData []byte `json:"image_data"`
}

type embedResponse struct {
	Found   bool      `json:"found"`
	Vector  []float32 `json:"vector"`
	Message string    `json:"message"`
}

// DialEmbedder returns a ready-to-use client for the embedding model server.
func DialEmbedder(ctx context.Context, addr string, logger *zap.Logger) (embedder.Client, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
		grpc.WithBlock(),
	)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_embedder", "", err)
		logger.Error("failed to dial embedder", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	return &grpcEmbedder{conn: conn, logger: logger}, conn, nil
}

type grpcEmbedder struct {
	conn   *grpc.ClientConn
	logger *zap.Logger
}

func (g *grpcEmbedder) Embed(ctx context.Context, imageBytes []byte) (*embedder.Result, error) {
	req := &embedRequest{ImageData: imageBytes}
	resp := &embedResponse{}
	if err := g.conn.Invoke(ctx, embedMethod, req, resp); err != nil {
		wrapped := logging.NewOperationError("grpcclient.embed", "", err)
		g.logger.Error("embedder call failed", zap.Error(wrapped))
		return nil, wrapped
	}
	return &embedder.Result{
		Found:   resp.Found,
		Vector:  resp.Vector,
		Message: resp.Message,
	}, nil
}
