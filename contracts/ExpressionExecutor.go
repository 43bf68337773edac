package contracts

import "context"

type ExpressionExecutor interface {
	Evaluate(formula string, snapshot SpreadsheetState) CellValue
}

type CellReferenceResolver interface {
	Resolve(address string, snapshot SpreadsheetState) float64
}

// EvaluationQueue hands formulas to an evaluation context and streams back results
type EvaluationQueue interface {
	Submit(ctx context.Context, request EvaluationRequest) error
	Results() <-chan EvaluationResponse
}
