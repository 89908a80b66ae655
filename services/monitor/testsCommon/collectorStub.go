package testsCommon

import (
	"context"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
)

// CollectorStub -
type CollectorStub struct {
	NameHandler    func() string
	CollectHandler func(ctx context.Context) ([]common.Sample, error)
}

// Name -
func (stub *CollectorStub) Name() string {
	if stub.NameHandler != nil {
		return stub.NameHandler()
	}

	return "stub"
}

// Collect -
func (stub *CollectorStub) Collect(ctx context.Context) ([]common.Sample, error) {
	if stub.CollectHandler != nil {
		return stub.CollectHandler(ctx)
	}

	return make([]common.Sample, 0), nil
}

// IsInterfaceNil -
func (stub *CollectorStub) IsInterfaceNil() bool {
	return stub == nil
}
