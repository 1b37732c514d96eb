package implementation

import (
	"context"

	"source-intel-be/internal/entity"
	"source-intel-be/internal/mapper"
	"source-intel-be/internal/model"
	"source-intel-be/internal/repository/contract"
	"source-intel-be/internal/repository/scope"
	"source-intel-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SynthesisDecisionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SynthesisDecisionMapper
}

func NewSynthesisDecisionRepository(db *gorm.DB) contract.SynthesisDecisionRepository {
	return &SynthesisDecisionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSynthesisDecisionMapper(),
	}
}

func (r *SynthesisDecisionRepositoryImpl) Create(ctx context.Context, decision *entity.SynthesisDecision) error {
	m, err := r.mapper.ToModel(decision)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// FindAll returns the newest decisions first unless a spec orders otherwise.
func (r *SynthesisDecisionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SynthesisDecision, error) {
	var models []*model.SynthesisDecision
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.SynthesisDecision{}), specs...)
	if err := query.Scopes(scope.OrderByCreatedDesc).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SynthesisDecisionRepositoryImpl) CountByContext(ctx context.Context, specs ...specification.Specification) (map[string]int64, error) {
	var rows []struct {
		Context string
		Total   int64
	}
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.SynthesisDecision{}), specs...)
	if err := query.Select("context, COUNT(*) AS total").Group("context").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Context] = row.Total
	}
	return out, nil
}
