package e2e

import (
	"github.com/cucumber/godog"

	"willgate/e2e/steps/workflow"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	workflow.RegisterSteps(ctx, tc)
}
