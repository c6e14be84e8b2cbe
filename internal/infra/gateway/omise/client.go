package omise

import (
	"context"

	omisego "github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// API is the slice of the Omise REST API the gateway uses
type API interface {
	CreateCharge(ctx context.Context, op *operations.CreateCharge) (*omisego.Charge, error)
	CreateSource(ctx context.Context, op *operations.CreateSource) (*omisego.Source, error)
	CreateRefund(ctx context.Context, op *operations.CreateRefund) (*omisego.Refund, error)
	RetrieveEvent(ctx context.Context, eventID string) (*omisego.Event, error)
}

type sdkClient struct {
	client *omisego.Client
}

func NewClient(publicKey, secretKey string) (API, error) {
	c, err := omisego.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, err
	}
	return &sdkClient{client: c}, nil
}

func (c *sdkClient) CreateCharge(ctx context.Context, op *operations.CreateCharge) (*omisego.Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := &omisego.Charge{}
	if err := c.client.Do(ch, op); err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *sdkClient) CreateSource(ctx context.Context, op *operations.CreateSource) (*omisego.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := &omisego.Source{}
	if err := c.client.Do(src, op); err != nil {
		return nil, err
	}
	return src, nil
}

func (c *sdkClient) CreateRefund(ctx context.Context, op *operations.CreateRefund) (*omisego.Refund, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rf := &omisego.Refund{}
	if err := c.client.Do(rf, op); err != nil {
		return nil, err
	}
	return rf, nil
}

func (c *sdkClient) RetrieveEvent(ctx context.Context, eventID string) (*omisego.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ev := &omisego.Event{}
	if err := c.client.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, err
	}
	return ev, nil
}
