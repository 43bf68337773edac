package main

import (
	"collabSheet/contracts"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

const FormulaPrefix = "="

const DefaultMaxFormulaDepth = 256

const formulaOperators = "+-*/"

// literalPrefix names the identifiers numeric literals are swapped for before parsing.
// User input can never produce it since "_" is not an allowed character.
const literalPrefix = "_lit"

var ExpressionError = errors.New("expression error")

var DivisionByZeroError = fmt.Errorf("%w: %s", ExpressionError, "division by zero")

var FormulaTooComplexError = fmt.Errorf("%w: %s", ExpressionError, "formula too complex")

var UnsupportedTokenError = fmt.Errorf("%w: %s", ExpressionError, "unsupported token")

var NonFiniteResultError = fmt.Errorf("%w: %s", ExpressionError, "result is not a finite number")

// ExpressionExecutor evaluates `=` formulas built from non-negative numbers, cell
// references and the four binary operators, with an optional leading sign.
// It keeps no state between calls.
type ExpressionExecutor struct {
	canonicalizer *Canonicalizer
	resolver      contracts.CellReferenceResolver
	allowedChars  *regexp.Regexp
	operandToken  *regexp.Regexp
	decimal       *regexp.Regexp
	maxDepth      int
	logger        *slog.Logger
	metrics       *Metrics
}

func NewExpressionExecutor(
	canonicalizer *Canonicalizer, resolver contracts.CellReferenceResolver,
	maxDepth int, logger *slog.Logger, metrics *Metrics,
) *ExpressionExecutor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxFormulaDepth
	}

	return &ExpressionExecutor{
		canonicalizer: canonicalizer,
		resolver:      resolver,
		allowedChars:  regexp.MustCompile(`^[A-Za-z0-9.\s+\-*/]*$`),
		operandToken:  regexp.MustCompile(`[A-Za-z0-9.]+`),
		decimal:       regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`),
		maxDepth:      maxDepth,
		logger:        logger,
		metrics:       metrics,
	}
}

// Evaluate returns the literal unchanged for non-formulas, the numeric result for
// formulas, or the error marker. The failure reason is only logged.
func (e *ExpressionExecutor) Evaluate(formula string, snapshot contracts.SpreadsheetState) contracts.CellValue {
	if !e.IsFormula(formula) {
		e.metrics.Evaluations.WithLabelValues(EvaluationResultLiteral).Inc()
		return contracts.TextValue(formula)
	}

	result, err := e.doEvaluate(formula, snapshot)
	if err != nil {
		e.logger.Warn("formula evaluation failed", "formula", formula, "error", err)
		e.metrics.Evaluations.WithLabelValues(EvaluationResultError).Inc()
		return contracts.ErrorValue()
	}

	e.metrics.Evaluations.WithLabelValues(EvaluationResultNumber).Inc()
	return contracts.NumberValue(result)
}

func (e *ExpressionExecutor) IsFormula(expression string) bool {
	return strings.HasPrefix(expression, FormulaPrefix)
}

func (e *ExpressionExecutor) doEvaluate(formula string, snapshot contracts.SpreadsheetState) (float64, error) {
	expression := strings.TrimPrefix(formula, FormulaPrefix)
	if strings.TrimSpace(expression) == "" {
		return 0, fmt.Errorf("%w: empty formula", ExpressionError)
	}

	// the parser accepts a much wider language, so unsupported characters (parentheses included) are rejected upfront
	if !e.allowedChars.MatchString(expression) {
		return 0, fmt.Errorf("%w: %q", UnsupportedTokenError, expression)
	}

	prepared, literals, err := e.extractLiterals(expression)
	if err != nil {
		return 0, err
	}

	tree, err := parser.Parse(prepared)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ExpressionError, err.Error())
	}

	visitor := &FindCellRefsVisitor{skipPrefix: literalPrefix}
	ast.Walk(&tree.Node, visitor)

	vars, err := e.lookupAndFillVars(visitor.cellRefs, snapshot)
	if err != nil {
		return 0, err
	}

	for name, value := range literals {
		vars[name] = value
	}

	result, err := e.walk(tree.Node, vars, 0, e.depthLimit(expression), true)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, NonFiniteResultError
	}

	return result, nil
}

// extractLiterals replaces every numeric literal with a generated identifier, so only plain
// decimals are accepted and each of them is read as float64 whatever its length.
func (e *ExpressionExecutor) extractLiterals(expression string) (string, map[string]float64, error) {
	literals := make(map[string]float64)
	var prepared strings.Builder
	last := 0

	for _, bounds := range e.operandToken.FindAllStringIndex(expression, -1) {
		token := expression[bounds[0]:bounds[1]]
		first := token[0]
		if (first >= 'A' && first <= 'Z') || (first >= 'a' && first <= 'z') {
			continue
		}

		if !e.decimal.MatchString(token) {
			return "", nil, fmt.Errorf("%w: %s", UnsupportedTokenError, token)
		}

		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s", UnsupportedTokenError, token)
		}

		name := literalPrefix + strconv.Itoa(len(literals))
		literals[name] = value

		prepared.WriteString(expression[last:bounds[0]])
		prepared.WriteString(name)
		last = bounds[1]
	}
	prepared.WriteString(expression[last:])

	return prepared.String(), literals, nil
}

// lookupAndFillVars resolves every referenced address once; vars doubles as the set of
// already substituted addresses, so a repeated reference reuses the resolved value.
func (e *ExpressionExecutor) lookupAndFillVars(cellRefs []string, snapshot contracts.SpreadsheetState) (map[string]float64, error) {
	vars := make(map[string]float64, len(cellRefs))

	for _, cellRef := range cellRefs {
		if !e.canonicalizer.IsCellAddress(cellRef) {
			return nil, fmt.Errorf("%w: %s", UnsupportedTokenError, cellRef)
		}

		canonical := e.canonicalizer.Canonicalize(cellRef)
		if _, visited := vars[canonical]; visited {
			continue
		}

		vars[canonical] = e.resolver.Resolve(canonical, snapshot)
	}

	return vars, nil
}

// depthLimit is the number of operators the expression can contain, capped by maxDepth
func (e *ExpressionExecutor) depthLimit(expression string) int {
	limit := 1
	for _, char := range expression {
		if strings.ContainsRune(formulaOperators, char) {
			limit++
		}
	}

	return min(limit, e.maxDepth)
}

func (e *ExpressionExecutor) walk(node ast.Node, vars map[string]float64, depth int, limit int, leading bool) (float64, error) {
	if depth >= limit {
		return 0, FormulaTooComplexError
	}

	switch typed := node.(type) {
	case *ast.IdentifierNode:
		name := typed.Value
		if !strings.HasPrefix(name, literalPrefix) {
			name = e.canonicalizer.Canonicalize(name)
		}

		value, ok := vars[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", UnsupportedTokenError, typed.Value)
		}
		return value, nil

	case *ast.UnaryNode:
		if !leading {
			return 0, fmt.Errorf("%w: sign operator %q inside expression", UnsupportedTokenError, typed.Operator)
		}

		operand, err := e.walk(typed.Node, vars, depth+1, limit, false)
		if err != nil {
			return 0, err
		}

		switch typed.Operator {
		case "-":
			return -operand, nil
		case "+":
			return operand, nil
		}
		return 0, fmt.Errorf("%w: operator %q", UnsupportedTokenError, typed.Operator)

	case *ast.BinaryNode:
		left, err := e.walk(typed.Left, vars, depth+1, limit, leading)
		if err != nil {
			return 0, err
		}

		right, err := e.walk(typed.Right, vars, depth+1, limit, false)
		if err != nil {
			return 0, err
		}

		switch typed.Operator {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, DivisionByZeroError
			}
			return left / right, nil
		}
		return 0, fmt.Errorf("%w: operator %q", UnsupportedTokenError, typed.Operator)
	}

	return 0, fmt.Errorf("%w: %T", UnsupportedTokenError, node)
}
