// Package relation provides a client for Ory Keto, an open-source authorization server.
// The settlement service only reads relations: order participation is written by the
// marketplace core, and the live feed checks it before streaming events.
package relation

import (
	"fmt"

	pb "github.com/ory/keto/proto/ory/keto/relation_tuples/v1alpha2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client holds the gRPC connections to the Keto APIs.
// It is safe for concurrent use.
type Client struct {
	readConn *grpc.ClientConn
	readSC   pb.ReadServiceClient
	checkSC  pb.CheckServiceClient
}

// Config holds the configuration for the Keto client. WriteAddr is accepted for
// config compatibility but unused here.
type Config struct {
	WriteAddr string
	ReadAddr  string
}

// NewClient creates a new Keto client and its associated cleanup function.
func NewClient(cfg Config) (*Client, func(), error) {
	if cfg.ReadAddr == "" {
		// No Keto configured: return a client whose checks fail closed.
		return &Client{}, func() {}, nil
	}

	readConn, err := grpc.NewClient(cfg.ReadAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to keto read api: %w", err)
	}

	client := &Client{
		readConn: readConn,
		readSC:   pb.NewReadServiceClient(readConn),
		checkSC:  pb.NewCheckServiceClient(readConn),
	}

	cleanup := func() {
		readConn.Close()
	}
	return client, cleanup, nil
}
