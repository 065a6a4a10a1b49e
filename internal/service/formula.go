package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"combat/internal/models"
	"combat/internal/monitoring"
)

// Jetons interdits dans les formules, rejetés à la compilation
var forbiddenFormulaTokens = []string{
	"import", "exec", "eval", "compile", "open", "__", "os.", "sys.",
}

// FormulaEngineInterface définit l'évaluateur de formules du moteur de combat
type FormulaEngineInterface interface {
	// Eval évalue une formule sur un scope fermé. Ne lève jamais :
	// toute erreur (syntaxe, identifiant inconnu, division par zéro)
	// retourne 0.0 et journalise un avertissement.
	Eval(expr string, scope map[string]float64) float64

	// Evaluate évalue en exposant l'erreur (utilisé par l'IA des monstres,
	// qui conserve une capacité quand sa condition ne s'évalue pas).
	Evaluate(expr string, scope map[string]float64) (float64, error)

	// Precompile valide et met en cache les formules d'une liste d'effets
	Precompile(effects []models.EffectPayload)
}

// FormulaEngine compile chaque formule une seule fois et met le programme
// en cache. Le cache est partageable entre combats : lecture seule après
// compilation.
type FormulaEngine struct {
	mu    sync.RWMutex
	cache map[string]*formulaProgram
}

// NewFormulaEngine crée un nouvel évaluateur de formules
func NewFormulaEngine() FormulaEngineInterface {
	return &FormulaEngine{
		cache: make(map[string]*formulaProgram),
	}
}

// Eval évalue une formule, 0.0 en cas d'échec
func (e *FormulaEngine) Eval(expr string, scope map[string]float64) float64 {
	value, err := e.Evaluate(expr, scope)
	if err != nil {
		monitoring.EffectErrorsTotal.WithLabelValues("formula_eval").Inc()
		logrus.WithFields(logrus.Fields{
			"formula": expr,
			"error":   err.Error(),
		}).Warn("Formula evaluation failed")
		return 0.0
	}
	return value
}

// Evaluate évalue une formule en exposant l'erreur
func (e *FormulaEngine) Evaluate(expr string, scope map[string]float64) (float64, error) {
	program, err := e.compile(expr)
	if err != nil {
		return 0.0, err
	}
	return program.root.eval(scope)
}

// Precompile met en cache les formules portées par une liste d'effets.
// Les erreurs sont seulement journalisées : une formule invalide vaudra
// 0.0 à l'exécution.
func (e *FormulaEngine) Precompile(effects []models.EffectPayload) {
	for _, effect := range effects {
		for _, key := range []string{"formula", "chance", "condition"} {
			expr := effect.Params.GetFormula(key, "")
			if expr == "" {
				continue
			}
			if _, err := e.compile(expr); err != nil {
				logrus.WithFields(logrus.Fields{
					"opcode":  effect.Opcode,
					"formula": expr,
					"error":   err.Error(),
				}).Warn("Formula precompilation failed")
			}
		}
		for _, branch := range []string{"then_effects", "else_effects"} {
			if nested := effect.Params.GetEffects(branch); len(nested) > 0 {
				e.Precompile(nested)
			}
		}
	}
}

// compile valide, parse et met en cache une formule
func (e *FormulaEngine) compile(expr string) (*formulaProgram, error) {
	e.mu.RLock()
	program, ok := e.cache[expr]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	if err := validateFormula(expr); err != nil {
		return nil, err
	}

	root, err := parseFormula(expr)
	if err != nil {
		return nil, err
	}

	program = &formulaProgram{root: root}

	e.mu.Lock()
	e.cache[expr] = program
	e.mu.Unlock()

	return program, nil
}

// validateFormula rejette les jetons dangereux avant tout parsing
func validateFormula(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("empty formula")
	}
	lowered := strings.ToLower(expr)
	for _, token := range forbiddenFormulaTokens {
		if strings.Contains(lowered, token) {
			return fmt.Errorf("forbidden token %q in formula", token)
		}
	}
	return nil
}

// formulaProgram est une formule compilée, immuable après création
type formulaProgram struct {
	root exprNode
}

// exprNode est un nœud de l'AST arithmétique
type exprNode interface {
	eval(scope map[string]float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(map[string]float64) (float64, error) {
	return float64(n), nil
}

type identNode string

func (n identNode) eval(scope map[string]float64) (float64, error) {
	if value, ok := scope[string(n)]; ok {
		return value, nil
	}
	return 0, fmt.Errorf("unknown identifier %q", string(n))
}

type unaryNode struct {
	op      tokenKind
	operand exprNode
}

func (n *unaryNode) eval(scope map[string]float64) (float64, error) {
	value, err := n.operand.eval(scope)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case tokenMinus:
		return -value, nil
	case tokenNot:
		if value == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported unary operator")
}

type binaryNode struct {
	op    tokenKind
	left  exprNode
	right exprNode
}

func (n *binaryNode) eval(scope map[string]float64) (float64, error) {
	left, err := n.left.eval(scope)
	if err != nil {
		return 0, err
	}
	right, err := n.right.eval(scope)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case tokenPlus:
		return left + right, nil
	case tokenMinus:
		return left - right, nil
	case tokenStar:
		return left * right, nil
	case tokenSlash:
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case tokenLess:
		return boolToFloat(left < right), nil
	case tokenLessEq:
		return boolToFloat(left <= right), nil
	case tokenGreater:
		return boolToFloat(left > right), nil
	case tokenGreaterEq:
		return boolToFloat(left >= right), nil
	case tokenEq:
		return boolToFloat(left == right), nil
	case tokenNotEq:
		return boolToFloat(left != right), nil
	case tokenAnd:
		return boolToFloat(left != 0 && right != 0), nil
	case tokenOr:
		return boolToFloat(left != 0 || right != 0), nil
	}
	return 0, fmt.Errorf("unsupported binary operator")
}

type callNode struct {
	fn   string
	args []exprNode
}

func (n *callNode) eval(scope map[string]float64) (float64, error) {
	values := make([]float64, len(n.args))
	for i, arg := range n.args {
		value, err := arg.eval(scope)
		if err != nil {
			return 0, err
		}
		values[i] = value
	}

	switch n.fn {
	case "min":
		if len(values) == 0 {
			return 0, fmt.Errorf("min requires at least one argument")
		}
		result := values[0]
		for _, v := range values[1:] {
			if v < result {
				result = v
			}
		}
		return result, nil
	case "max":
		if len(values) == 0 {
			return 0, fmt.Errorf("max requires at least one argument")
		}
		result := values[0]
		for _, v := range values[1:] {
			if v > result {
				result = v
			}
		}
		return result, nil
	case "abs":
		if len(values) != 1 {
			return 0, fmt.Errorf("abs requires exactly one argument")
		}
		if values[0] < 0 {
			return -values[0], nil
		}
		return values[0], nil
	}
	return 0, fmt.Errorf("unknown function %q", n.fn)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// tokenKind énumère les jetons du lexeur de formules
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
	tokenComma
	tokenLess
	tokenLessEq
	tokenGreater
	tokenGreaterEq
	tokenEq
	tokenNotEq
	tokenAnd
	tokenOr
	tokenNot
)

type token struct {
	kind  tokenKind
	text  string
	value float64
}

// tokenizeFormula découpe l'expression en jetons
func tokenizeFormula(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c >= '0' && c <= '9' || c == '.':
			start := i
			seenDot := false
			for i < len(expr) && (expr[i] >= '0' && expr[i] <= '9' || expr[i] == '.') {
				if expr[i] == '.' {
					if seenDot {
						return nil, fmt.Errorf("malformed number at position %d", start)
					}
					seenDot = true
				}
				i++
			}
			value, err := strconv.ParseFloat(expr[start:i], 64)
			if err != nil {
				return nil, fmt.Errorf("malformed number %q", expr[start:i])
			}
			tokens = append(tokens, token{kind: tokenNumber, value: value})

		case isIdentStart(c):
			start := i
			for i < len(expr) && isIdentPart(expr[i]) {
				i++
			}
			word := expr[start:i]
			switch word {
			case "and":
				tokens = append(tokens, token{kind: tokenAnd})
			case "or":
				tokens = append(tokens, token{kind: tokenOr})
			case "not":
				tokens = append(tokens, token{kind: tokenNot})
			default:
				tokens = append(tokens, token{kind: tokenIdent, text: word})
			}

		default:
			two := ""
			if i+1 < len(expr) {
				two = expr[i : i+2]
			}
			switch {
			case two == "<=":
				tokens = append(tokens, token{kind: tokenLessEq})
				i += 2
			case two == ">=":
				tokens = append(tokens, token{kind: tokenGreaterEq})
				i += 2
			case two == "==":
				tokens = append(tokens, token{kind: tokenEq})
				i += 2
			case two == "!=":
				tokens = append(tokens, token{kind: tokenNotEq})
				i += 2
			case two == "&&":
				tokens = append(tokens, token{kind: tokenAnd})
				i += 2
			case two == "||":
				tokens = append(tokens, token{kind: tokenOr})
				i += 2
			default:
				switch c {
				case '+':
					tokens = append(tokens, token{kind: tokenPlus})
				case '-':
					tokens = append(tokens, token{kind: tokenMinus})
				case '*':
					tokens = append(tokens, token{kind: tokenStar})
				case '/':
					tokens = append(tokens, token{kind: tokenSlash})
				case '(':
					tokens = append(tokens, token{kind: tokenLParen})
				case ')':
					tokens = append(tokens, token{kind: tokenRParen})
				case ',':
					tokens = append(tokens, token{kind: tokenComma})
				case '<':
					tokens = append(tokens, token{kind: tokenLess})
				case '>':
					tokens = append(tokens, token{kind: tokenGreater})
				case '!':
					tokens = append(tokens, token{kind: tokenNot})
				default:
					return nil, fmt.Errorf("unexpected character %q at position %d", string(c), i)
				}
				i++
			}
		}
	}

	tokens = append(tokens, token{kind: tokenEOF})
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// formulaParser est un parseur descendant par précédence :
// or < and < comparaison < additif < multiplicatif < unaire < primaire
type formulaParser struct {
	tokens []token
	pos    int
}

// parseFormula construit l'AST d'une formule
func parseFormula(expr string) (exprNode, error) {
	tokens, err := tokenizeFormula(expr)
	if err != nil {
		return nil, err
	}

	p := &formulaParser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().kind != tokenEOF {
		return nil, fmt.Errorf("unexpected trailing tokens in formula")
	}
	return node, nil
}

func (p *formulaParser) current() token {
	return p.tokens[p.pos]
}

func (p *formulaParser) advance() token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *formulaParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().kind == tokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokenOr, left: left, right: right}
	}
	return left, nil
}

func (p *formulaParser) parseAnd() (exprNode, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.current().kind == tokenAnd {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokenAnd, left: left, right: right}
	}
	return left, nil
}

func (p *formulaParser) parseComparison() (exprNode, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.current().kind
		switch kind {
		case tokenLess, tokenLessEq, tokenGreater, tokenGreaterEq, tokenEq, tokenNotEq:
			p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &binaryNode{op: kind, left: left, right: right}
		default:
			return left, nil
		}
	}
}

func (p *formulaParser) parseAdditive() (exprNode, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.current().kind
		if kind != tokenPlus && kind != tokenMinus {
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: kind, left: left, right: right}
	}
}

func (p *formulaParser) parseMultiplicative() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.current().kind
		if kind != tokenStar && kind != tokenSlash {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: kind, left: left, right: right}
	}
}

func (p *formulaParser) parseUnary() (exprNode, error) {
	kind := p.current().kind
	if kind == tokenMinus || kind == tokenNot {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: kind, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *formulaParser) parsePrimary() (exprNode, error) {
	t := p.current()

	switch t.kind {
	case tokenNumber:
		p.advance()
		return numberNode(t.value), nil

	case tokenIdent:
		p.advance()
		if p.current().kind == tokenLParen {
			return p.parseCall(t.text)
		}
		return identNode(t.text), nil

	case tokenLParen:
		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current().kind != tokenRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.advance()
		return node, nil
	}

	return nil, fmt.Errorf("unexpected token in formula")
}

func (p *formulaParser) parseCall(fn string) (exprNode, error) {
	// Le '(' courant est consommé ici
	p.advance()

	var args []exprNode
	if p.current().kind != tokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.current().kind != tokenComma {
				break
			}
			p.advance()
		}
	}

	if p.current().kind != tokenRParen {
		return nil, fmt.Errorf("missing closing parenthesis in call to %s", fn)
	}
	p.advance()

	return &callNode{fn: fn, args: args}, nil
}
