package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const decisionQuery = "data.docverify.routes.decision"

// DefaultRoutePolicy reproduces the portal's routing: /login is public, every
// other page needs a session, and / always forwards to /login.
const DefaultRoutePolicy = `package docverify.routes

public_routes := {"/login"}

protected_routes := {
	"/onboarding",
	"/verify-contacts",
	"/dashboard/upload",
	"/dashboard/verified",
	"/dashboard/under-review",
	"/dashboard/rejected",
	"/dashboard/profile",
}

default known = false

known if input.route == "/"
known if input.route in public_routes
known if input.route in protected_routes

default allow = false

allow if input.route in public_routes

allow if {
	input.route in protected_routes
	input.session.authenticated
}

default redirect = ""

redirect = "/login" if input.route == "/"

redirect = "/login" if {
	input.route in protected_routes
	not input.session.authenticated
}

decision := {
	"allow": allow,
	"redirect": redirect,
	"known": known,
}
`

// OPAGuard evaluates a Rego route policy compiled once at construction.
type OPAGuard struct {
	query rego.PreparedEvalQuery
}

var _ RouteGuard = (*OPAGuard)(nil)

// NewOPAGuard compiles policy (DefaultRoutePolicy when empty). The policy must
// define data.docverify.routes.decision.
func NewOPAGuard(ctx context.Context, policy string) (*OPAGuard, error) {
	if policy == "" {
		policy = DefaultRoutePolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"routes.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile route policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(decisionQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare route policy: %w", err)
	}
	return &OPAGuard{query: q}, nil
}

// Authorize evaluates the policy for route.
func (g *OPAGuard) Authorize(ctx context.Context, route string, session SessionInfo) (Decision, error) {
	route = NormalizeRoute(route)
	input := map[string]interface{}{
		"route": route,
		"session": map[string]interface{}{
			"authenticated":  session.Authenticated,
			"email_verified": session.EmailVerified,
			"phone_verified": session.PhoneVerified,
		},
	}
	rs, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{Route: route}, fmt.Errorf("eval route policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{Route: route}, fmt.Errorf("route policy returned no result")
	}
	m, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{Route: route}, fmt.Errorf("route policy returned %T", rs[0].Expressions[0].Value)
	}
	d := Decision{Route: route}
	d.Allow, _ = m["allow"].(bool)
	d.Known, _ = m["known"].(bool)
	d.Redirect, _ = m["redirect"].(string)
	if !d.Allow && d.Redirect == "" && d.Known {
		log.Printf("policy: route %s denied without redirect", route)
	}
	return d, nil
}

// HealthCheck evaluates the compiled policy against a fixed input.
func (g *OPAGuard) HealthCheck(ctx context.Context) error {
	d, err := g.Authorize(ctx, RouteLogin, SessionInfo{})
	if err != nil {
		return err
	}
	if !d.Known {
		return fmt.Errorf("route policy does not know %s", RouteLogin)
	}
	return nil
}
