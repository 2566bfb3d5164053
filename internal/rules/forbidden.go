package rules

import (
	"fmt"
	"regexp"

	"guestlint/internal/diag"
)

// ForbiddenConstruct is like a Rule but supports several alternative
// patterns per construct and carries a suggested alternative. Used for
// denylisted standard-library calls and global-state idioms.
type ForbiddenConstruct struct {
	ID       string
	Name     string
	Reason   string
	Patterns []*regexp.Regexp
	// Alternative is the suggested guest SDK replacement.
	Alternative string
	Severity    diag.Severity
	Category    diag.Category
}

type forbiddenSpec struct {
	id          string
	name        string
	reason      string
	patterns    []string
	alternative string
	severity    diag.Severity
	category    diag.Category
}

func forbiddenConstructSpecs() []forbiddenSpec {
	return []forbiddenSpec{
		{
			id:          "global_state_static_mut",
			name:        "Static Mutable State",
			reason:      "Guest components must be stateless. Static mutable state persists across invocations.",
			patterns:    []string{`static\s+mut\s+\w+`},
			alternative: "Use function parameters or the StateStore provider trait for state management.",
			severity:    diag.SevError,
			category:    diag.CatStateless,
		},
		{
			id:          "global_state_once_cell",
			name:        "OnceCell Global State",
			reason:      "Guest components must be stateless. OnceCell creates global state.",
			patterns:    []string{`OnceCell\s*<`, `OnceLock\s*<`},
			alternative: "Use the Config provider trait for configuration values.",
			severity:    diag.SevError,
			category:    diag.CatStateless,
		},
		{
			id:          "global_state_lazy",
			name:        "Lazy Static Global State",
			reason:      "Guest components must be stateless. lazy_static!/LazyLock create global state.",
			patterns:    []string{`lazy_static!`, `LazyLock\s*<`, `Lazy\s*<`},
			alternative: "Use the Config provider trait for configuration values.",
			severity:    diag.SevError,
			category:    diag.CatStateless,
		},
		{
			id:          "std_fs",
			name:        "Filesystem Access",
			reason:      "std::fs is not available in WASM32. No filesystem access in the sandboxed environment.",
			patterns:    []string{`std::fs::`, `use\s+std::fs`},
			alternative: "Use the blobstore provider if blob storage is available.",
			severity:    diag.SevError,
			category:    diag.CatWasm,
		},
		{
			id:          "std_net",
			name:        "Network Access",
			reason:      "std::net is not available in WASM32. Use provider traits for network access.",
			patterns:    []string{`std::net::`, `use\s+std::net`},
			alternative: "Use the HttpRequest provider trait for HTTP requests.",
			severity:    diag.SevError,
			category:    diag.CatWasm,
		},
		{
			id:          "std_thread",
			name:        "Threading",
			reason:      "std::thread is not available in WASM32. The guest is single-threaded.",
			patterns:    []string{`std::thread::`, `use\s+std::thread`},
			alternative: "Use async/await for concurrent operations.",
			severity:    diag.SevError,
			category:    diag.CatWasm,
		},
		{
			id:          "std_process",
			name:        "Process Spawning",
			reason:      "std::process is not available in WASM32. Cannot spawn subprocesses.",
			patterns:    []string{`std::process::`, `use\s+std::process`},
			alternative: "Restructure logic to avoid subprocess spawning.",
			severity:    diag.SevError,
			category:    diag.CatWasm,
		},
		{
			id:          "std_env",
			name:        "Environment Variables",
			reason:      "std::env is not available in WASM32. Use the Config provider for configuration.",
			patterns:    []string{`std::env::`, `use\s+std::env`, `env::var\(`},
			alternative: `Use Config::get(provider, "KEY").await? for configuration values.`,
			severity:    diag.SevError,
			category:    diag.CatWasm,
		},
		{
			id:          "std_time_system",
			name:        "System Time",
			reason:      "std::time::SystemTime may not work correctly in WASM32.",
			patterns:    []string{`SystemTime::`, `use\s+std::time::SystemTime`},
			alternative: "Use chrono::Utc::now() for wall-clock time.",
			severity:    diag.SevWarning,
			category:    diag.CatWasm,
		},
		{
			id:          "thread_sleep",
			name:        "Thread Sleep",
			reason:      "std::thread::sleep is not available in WASM32.",
			patterns:    []string{`thread::sleep`, `std::thread::sleep`},
			alternative: "Async delays are not directly available in WASI. Consider restructuring logic.",
			severity:    diag.SevError,
			category:    diag.CatWasm,
		},
	}
}

func compileForbiddenConstructs() ([]ForbiddenConstruct, error) {
	specs := forbiddenConstructSpecs()
	out := make([]ForbiddenConstruct, 0, len(specs))
	for _, s := range specs {
		fc := ForbiddenConstruct{
			ID:          s.id,
			Name:        s.name,
			Reason:      s.reason,
			Alternative: s.alternative,
			Severity:    s.severity,
			Category:    s.category,
		}
		for _, p := range s.patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("forbidden construct %s: invalid pattern %q: %w", s.id, p, err)
			}
			fc.Patterns = append(fc.Patterns, re)
		}
		out = append(out, fc)
	}
	return out, nil
}

// forbiddenCrates maps denylisted crate names to the suggested guest SDK
// alternative. A crate appearing in a use or extern crate statement
// produces a forbidden_<crate> diagnostic.
func forbiddenCrates() map[string]string {
	const (
		altHTTP    = "Use the HttpRequest provider trait (ctx.provider.fetch())"
		altCache   = "Use the StateStore provider trait for caching"
		altPublish = "Use the Publisher provider trait for messaging"
		altRuntime = "Use async/await without an explicit runtime - WASI provides the executor"
		altState   = "Use the StateStore provider trait for shared state"
		altTable   = "Use the TableStore provider trait for database operations"
	)
	return map[string]string{
		// HTTP clients
		"reqwest":   altHTTP,
		"hyper":     altHTTP,
		"surf":      altHTTP,
		"ureq":      altHTTP,
		"isahc":     altHTTP,
		"attohttpc": altHTTP,
		// Redis
		"redis": altCache,
		"fred":  altCache,
		// Kafka / RabbitMQ
		"rdkafka": altPublish,
		"kafka":   altPublish,
		"lapin":   altPublish,
		"amqp":    altPublish,
		// Async runtimes
		"tokio":            altRuntime,
		"async-std":        altRuntime,
		"smol":             altRuntime,
		"actix-rt":         altRuntime,
		"futures-executor": altRuntime,
		// Parallelism and concurrency primitives
		"rayon":       "Use sequential iterators - the guest is single-threaded",
		"crossbeam":   "The guest is single-threaded; use async/await for concurrency",
		"parking_lot": "The guest is single-threaded; use async/await for concurrency",
		// Global state
		"once_cell":   "Use the Config provider trait for configuration values",
		"lazy_static": "Use the Config provider trait for configuration values",
		// Concurrent collections
		"dashmap": altState,
		"evmap":   altState,
		// Direct database clients
		"sqlx":     altTable,
		"diesel":   altTable,
		"rusqlite": altTable,
		"postgres": altTable,
		"mysql":    altTable,
		"mongodb":  altTable,
		// Filesystem
		"tempfile":    "Filesystem is not available in WASM32; use StateStore or TableStore",
		"directories": "Filesystem is not available in WASM32; use StateStore or TableStore",
		// Network
		"socket2": "Use the HttpRequest provider trait for network operations",
		"mio":     "Use the HttpRequest provider trait for network operations",
		"quinn":   "Use the HttpRequest provider trait for network operations",
	}
}
