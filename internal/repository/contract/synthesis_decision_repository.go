package contract

import (
	"context"

	"source-intel-be/internal/entity"
	"source-intel-be/internal/repository/specification"
)

type SynthesisDecisionRepository interface {
	Create(ctx context.Context, decision *entity.SynthesisDecision) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SynthesisDecision, error)
	CountByContext(ctx context.Context, specs ...specification.Specification) (map[string]int64, error)
}
