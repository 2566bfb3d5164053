package capability

import (
	"strings"
	"testing"

	"guestlint/internal/diag"
	"guestlint/internal/rules"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	catalog, err := rules.NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return NewAnalyzer(catalog)
}

func ids(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.RuleID)
	}
	return out
}

func hasID(diags []diag.Diagnostic, id string) bool {
	for _, d := range diags {
		if d.RuleID == id {
			return true
		}
	}
	return false
}

const wellFormedHandler = `
impl<P: Config + HttpRequest> Handler<P> for FetchRequest {
    fn from_input(input: Self::Input) -> Result<Self> {
        Ok(Self {})
    }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let base = ctx.provider.get("BASE_URL")?;
        let body = ctx.provider.fetch(req).await?;
        Ok(Reply::ok(body))
    }
}
`

func TestWellFormedHandlerIsClean(t *testing.T) {
	diags := newAnalyzer(t).Analyze(wellFormedHandler)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", ids(diags))
	}
}

func TestUnusedBoundIsWarning(t *testing.T) {
	src := `
impl<P: Config + Publisher> Handler<P> for QuietRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let v = ctx.provider.get("KEY")?;
        Ok(Reply::ok(v))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if !hasID(diags, rules.SynthUnusedBound) {
		t.Fatalf("expected %s, got %v", rules.SynthUnusedBound, ids(diags))
	}
	for _, d := range diags {
		if d.RuleID == rules.SynthUnusedBound {
			if d.Severity != diag.SevWarning {
				t.Errorf("unused bound severity = %v, want warning", d.Severity)
			}
			if !strings.Contains(d.Message, "Publisher") {
				t.Errorf("message must name the unused bound: %q", d.Message)
			}
		}
	}
}

func TestMissingBoundIsError(t *testing.T) {
	src := `
impl<P: Config> Handler<P> for SendingRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let v = ctx.provider.get("KEY")?;
        ctx.provider.send(event).await?;
        Ok(Reply::ok(v))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if !hasID(diags, rules.SynthMissingBound) {
		t.Fatalf("expected %s, got %v", rules.SynthMissingBound, ids(diags))
	}
	for _, d := range diags {
		if d.RuleID == rules.SynthMissingBound {
			if d.Severity != diag.SevError {
				t.Errorf("missing bound severity = %v, want error", d.Severity)
			}
			if !strings.Contains(d.FixTemplate, "Config + Publisher") {
				t.Errorf("fix must suggest the corrected bound list, got %q", d.FixTemplate)
			}
		}
	}
}

func TestWhereClauseBoundsAreRecognized(t *testing.T) {
	src := `
impl<P> Handler<P> for WhereRequest
where
    P: Config + HttpRequest,
{
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let base = ctx.provider.get("BASE_URL")?;
        let body = ctx.provider.fetch(req).await?;
        Ok(Reply::ok(body))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if hasID(diags, rules.SynthNoBounds) {
		t.Fatalf("where-clause bounds must count as declared, got %v", ids(diags))
	}
	if hasID(diags, rules.SynthMissingBound) {
		t.Fatalf("declared where-clause bounds reported missing: %v", ids(diags))
	}
}

func TestMultiLineWhereClauseReconciles(t *testing.T) {
	// rustfmt puts `where` and the bound list on their own lines; the
	// bounds still count as declared and reconcile normally.
	src := `
impl<P> Handler<P> for AuditRequest
where
    P: Config + HttpRequest + Publisher,
{
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let base = ctx.provider.get("BASE_URL")?;
        let body = ctx.provider.fetch(req).await?;
        Ok(Reply::ok(body))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if hasID(diags, rules.SynthNoBounds) {
		t.Fatalf("multi-line where bounds must count as declared, got %v", ids(diags))
	}
	if hasID(diags, rules.SynthMissingBound) {
		t.Fatalf("declared bounds reported missing: %v", ids(diags))
	}
	unused := 0
	for _, d := range diags {
		if d.RuleID == rules.SynthUnusedBound {
			unused++
			if !strings.Contains(d.Message, "Publisher") {
				t.Errorf("unused bound must name Publisher: %q", d.Message)
			}
		}
	}
	if unused != 1 {
		t.Fatalf("want exactly one unused-bound warning, got %v", ids(diags))
	}
}

func TestNoBoundsWarning(t *testing.T) {
	src := `
impl<P> Handler<P> for BareRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        Ok(Reply::ok(()))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if !hasID(diags, rules.SynthNoBounds) {
		t.Fatalf("expected %s, got %v", rules.SynthNoBounds, ids(diags))
	}
}

func TestExcessBoundsHeuristic(t *testing.T) {
	src := `
impl<P: Config + HttpRequest + Publisher + StateStore + Identity> Handler<P> for GreedyRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let a = ctx.provider.get("A")?;
        let b = ctx.provider.fetch(req).await?;
        ctx.provider.send(ev).await?;
        ctx.provider.set(key, val, None).await?;
        let tok = ctx.provider.access_token().await?;
        Ok(Reply::ok(()))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if !hasID(diags, rules.SynthExcessBounds) {
		t.Fatalf("expected %s for %d bounds, got %v", rules.SynthExcessBounds, MaxDeclaredBounds+1, ids(diags))
	}
}

func TestExactlyMaxBoundsIsFine(t *testing.T) {
	src := `
impl<P: Config + HttpRequest + Publisher + StateStore> Handler<P> for BusyRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let a = ctx.provider.get("A")?;
        let b = ctx.provider.fetch(req).await?;
        ctx.provider.send(ev).await?;
        ctx.provider.set(key, val, None).await?;
        Ok(Reply::ok(()))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if hasID(diags, rules.SynthExcessBounds) {
		t.Fatalf("exactly %d bounds must not trip the heuristic: %v", MaxDeclaredBounds, ids(diags))
	}
}

func TestMarkerTraitsAreIgnored(t *testing.T) {
	src := `
impl<P: Config + Send + Sync> Handler<P> for MarkerRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let v = ctx.provider.get("KEY")?;
        Ok(Reply::ok(v))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if hasID(diags, rules.SynthUnusedBound) {
		t.Fatalf("marker traits must not be reconciled as capabilities: %v", ids(diags))
	}
}

func TestMissingRequiredMethods(t *testing.T) {
	src := `
impl<P: Config> Handler<P> for HalfRequest {
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let v = ctx.provider.get("KEY")?;
        Ok(Reply::ok(v))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if !hasID(diags, rules.SynthMissingFromInput) {
		t.Fatalf("expected %s, got %v", rules.SynthMissingFromInput, ids(diags))
	}
	if hasID(diags, rules.SynthMissingHandle) {
		t.Fatalf("handle is present, got %v", ids(diags))
	}
}

func TestConfigVersusStateStoreGet(t *testing.T) {
	// A quoted key without .await is Config; a variable key with .await is
	// StateStore.
	src := `
impl<P: Config + StateStore> Handler<P> for MixedRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        let limit = ctx.provider.get("RATE_LIMIT")?;
        let cached = ctx.provider.get(cache_key).await?;
        Ok(Reply::ok(cached))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	if hasID(diags, rules.SynthUnusedBound) {
		t.Fatalf("both Config and StateStore are used, got %v", ids(diags))
	}
}

func TestUnbalancedBlockDegradesSilently(t *testing.T) {
	src := `
impl<P: Config> Handler<P> for BrokenRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {})
`
	diags := newAnalyzer(t).Analyze(src)
	if len(diags) != 0 {
		t.Fatalf("unbalanced block must produce no diagnostics, got %v", ids(diags))
	}
}

func TestMultipleBindingSites(t *testing.T) {
	src := wellFormedHandler + `
impl<P: Publisher> Handler<P> for SecondRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        Ok(Reply::ok(()))
    }
}
`
	diags := newAnalyzer(t).Analyze(src)
	// Only the second block has an unused bound.
	if !hasID(diags, rules.SynthUnusedBound) {
		t.Fatalf("expected unused bound in second block, got %v", ids(diags))
	}
	for _, d := range diags {
		if d.RuleID == rules.SynthUnusedBound && !strings.Contains(d.Snippet, "SecondRequest") {
			t.Errorf("diagnostic attributed to the wrong block: %q", d.Snippet)
		}
	}
}
