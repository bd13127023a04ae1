package core

import "shipcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewBatchRowCapRule())
	engine.Register(NewServiceTierRule())
	engine.Register(NewBatchIntegrityRule())
	engine.Register(NewPurchaseLockRule())
	return engine
}
