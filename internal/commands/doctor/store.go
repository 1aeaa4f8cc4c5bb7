package doctor

import (
	"context"
	"fmt"

	"github.com/sunpark333/topicwala/internal/core/route"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
)

// StateReader is the state inspected by StoreCheck.
type StateReader interface {
	route.Store
	rules.Store
	topic.Directory
}

// StoreCheck verifies the store is readable and the relay route is set.
type StoreCheck struct {
	store StateReader
}

// NewStoreCheck creates a new store check.
func NewStoreCheck(store StateReader) *StoreCheck {
	return &StoreCheck{store: store}
}

func (c *StoreCheck) Name() string {
	return "State"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	rt, err := c.store.Route(ctx)
	if err != nil {
		result.fail("Store readable", err.Error())
		return result
	}
	result.pass("Store readable", "")

	switch {
	case rt.Complete():
		result.pass("Route", fmt.Sprintf("%d -> %d", rt.Source, rt.Destination))
	case rt.Source == 0 && rt.Destination == 0:
		result.warn("Route", "source and destination not set")
	case rt.Source == 0:
		result.warn("Route", "source not set")
	default:
		result.warn("Route", "destination not set")
	}

	if rt.Destination != 0 {
		threads, err := c.store.Topics(ctx, rt.Destination)
		if err != nil {
			result.fail("Topic directory", err.Error())
		} else {
			result.pass("Topic directory", fmt.Sprintf("%d topic(s)", len(threads)))
		}
	}

	set, err := c.store.Rules(ctx)
	if err != nil {
		result.fail("Rewrite rules", err.Error())
	} else {
		result.pass("Rewrite rules", fmt.Sprintf("%d rule(s)", len(set)))
	}

	return result
}
