package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/engine"
)

// Client wraps a gRPC connection to MissionService.
type Client struct {
	conn grpc.ClientConnInterface
	cc   *grpc.ClientConn // nil when the connection is borrowed
}

// NewClient connects to a MissionService at addr.
func NewClient(addr string) (*Client, error) {
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: cc, cc: cc}, nil
}

// NewClientConn wraps an existing connection. Close leaves it open.
func NewClientConn(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close shuts down the gRPC connection if the client owns it.
func (c *Client) Close() error {
	if c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Simulation is a stored job as reported by GetSimulation.
type Simulation struct {
	ID     string
	Status string
	Error  string
	Result *engine.MissionRun
}

// RunMission runs cfg on the server and returns the run with its stored id,
// which is empty when the server keeps no store.
func (c *Client) RunMission(ctx context.Context, cfg config.Simulation) (*engine.MissionRun, string, error) {
	in, err := encodeConfig(cfg)
	if err != nil {
		return nil, "", err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodRunMission, in, out); err != nil {
		return nil, "", fmt.Errorf("run mission rpc: %w", err)
	}

	m := out.AsMap()
	run, err := engine.FromMap(m)
	if err != nil {
		return nil, "", fmt.Errorf("decode mission run: %w", err)
	}
	id, _ := m["simulation_id"].(string)
	return run, id, nil
}

// GetSimulation fetches a stored job.
func (c *Client) GetSimulation(ctx context.Context, id string) (*Simulation, error) {
	in, err := structpb.NewStruct(map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodGetSimulation, in, out); err != nil {
		return nil, fmt.Errorf("get simulation rpc: %w", err)
	}

	f := out.GetFields()
	sim := &Simulation{
		ID:     f["simulation_id"].GetStringValue(),
		Status: f["status"].GetStringValue(),
		Error:  f["error"].GetStringValue(),
	}
	if res := f["result"].GetStructValue(); res != nil {
		if sim.Result, err = engine.FromMap(res.AsMap()); err != nil {
			return nil, fmt.Errorf("decode mission run: %w", err)
		}
	}
	return sim, nil
}

func encodeConfig(cfg config.Simulation) (*structpb.Struct, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return structpb.NewStruct(m)
}
