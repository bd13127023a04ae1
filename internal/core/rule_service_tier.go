package core

import (
	"context"
	"fmt"

	"shipcore/pkg/domain"
)

// NewServiceTierRule returns the rule blocking shipment writes that carry a
// service tier outside the offered set.
func NewServiceTierRule() domain.Rule {
	return serviceTierRule{}
}

type serviceTierRule struct{}

func (serviceTierRule) Name() string { return "service_tier" }

func (serviceTierRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityShipment || change.Action == domain.ActionDelete {
			continue
		}
		rec, ok := view.FindShipment(change.ID)
		if !ok {
			continue
		}
		if rec.Service != "" && !domain.ValidServiceTier(rec.Service) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "service_tier",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("shipment %s has unknown service tier %q", rec.ID, rec.Service),
				Entity:   domain.EntityShipment,
				EntityID: rec.ID,
			})
		}
	}
	return res, nil
}
