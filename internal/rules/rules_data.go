package rules

import "guestlint/internal/diag"

// builtinRules returns the full rule table. This is configuration data:
// adding a rule means appending an entry, no code changes elsewhere.
func builtinRules() []ruleSpec {
	return []ruleSpec{
		// -------------------- handler --------------------
		{
			id:       "handler_async_handle",
			name:     "Handle Method is Async",
			category: diag.CatHandler,
			severity: diag.SevError,
			desc:     "The handle method must be async to support asynchronous provider operations.",
			pattern:  `^\s*fn\s+handle\s*\(`,
			fix:      "async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>>",
			doc:      "handler-trait.md",
		},
		{
			id:       "handler_context_lifetime",
			name:     "Context Lifetime Parameter",
			category: diag.CatHandler,
			severity: diag.SevWarning,
			desc:     "Context should use the elided lifetime Context<'_, P> for clarity.",
			pattern:  `Context<P>`,
			fix:      "Context<'_, P>",
			doc:      "handler-trait.md",
		},
		// -------------------- provider --------------------
		{
			id:       "provider_config_hardcode",
			name:     "Avoid Hardcoded Config",
			category: diag.CatProvider,
			severity: diag.SevWarning,
			desc:     "Configuration values should come from the Config provider, not hardcoded strings.",
			pattern:  `(?:api_key|secret|password|token)\s*=\s*"[^"]+"`,
			fix:      `let api_key = ctx.provider.get("API_KEY").ok_or_else(|| bad_request!("missing API_KEY"))?;`,
			doc:      "provider-traits.md#config",
		},
		{
			id:       "provider_direct_http",
			name:     "Avoid Direct HTTP",
			category: diag.CatProvider,
			severity: diag.SevError,
			desc:     "HTTP requests must go through the HttpRequest provider, not direct clients.",
			pattern:  `(?:reqwest|hyper|surf|ureq)::`,
			fix:      "Use ctx.provider.fetch() from the HttpRequest trait",
			doc:      "wasm32.md#forbidden-crates",
		},
		{
			id:       "provider_bounds_minimal",
			name:     "Minimal Provider Bounds",
			category: diag.CatProvider,
			severity: diag.SevWarning,
			desc:     "Declare only the provider traits that are actually used in the handler.",
			pattern:  `P:\s*(\w+(?:\s*\+\s*\w+){4,})`,
			fix:      "Only include traits that are actually used: P: Config + HttpRequest",
			doc:      "handler-trait.md#provider-bounds",
		},
		// -------------------- error --------------------
		{
			id:       "error_generic_unwrap",
			name:     "Avoid unwrap/expect",
			category: diag.CatError,
			severity: diag.SevWarning,
			desc:     "Avoid .unwrap() and .expect() as they cause panics. Use the ? operator instead.",
			pattern:  `\.(unwrap|expect)\s*\(`,
			fix:      `.ok_or_else(|| bad_request!("error message"))?`,
			doc:      "error-handling.md#no-panics",
		},
		{
			id:       "error_panic_macro",
			name:     "Avoid panic! Macro",
			category: diag.CatError,
			severity: diag.SevError,
			desc:     "Never use panic! in guest handlers - it aborts the entire component.",
			pattern:  `panic!\s*\(`,
			fix:      `Return Err(server_error!("reason")) instead`,
			doc:      "error-handling.md#no-panics",
		},
		{
			id:       "error_unreachable",
			name:     "Avoid unreachable! Macro",
			category: diag.CatError,
			severity: diag.SevError,
			desc:     "Never use unreachable! in guest handlers.",
			pattern:  `unreachable!\s*\(`,
			fix:      "Use an explicit error return instead",
			doc:      "error-handling.md#no-panics",
		},
		{
			id:       "error_todo",
			name:     "Avoid todo! Macro",
			category: diag.CatError,
			severity: diag.SevWarning,
			desc:     "todo! causes panics - replace with proper error handling or implementation.",
			pattern:  `todo!\s*\(`,
			fix:      "Implement the missing functionality or return an error",
			doc:      "error-handling.md#no-panics",
		},
		{
			id:       "error_assert",
			name:     "No assert! in Handlers",
			category: diag.CatError,
			severity: diag.SevError,
			desc:     "assert! causes panics which abort guest execution. Return errors instead.",
			pattern:  `assert!\s*\(`,
			fix:      `if !condition { return Err(bad_request!("validation failed")); }`,
			doc:      "error-handling.md#no-panics",
		},
		{
			id:       "error_assert_eq",
			name:     "No assert_eq! in Handlers",
			category: diag.CatError,
			severity: diag.SevError,
			desc:     "assert_eq! causes panics which abort guest execution. Return errors instead.",
			pattern:  `assert_eq!\s*\(`,
			fix:      `if a != b { return Err(bad_request!("mismatch")); }`,
			doc:      "error-handling.md#no-panics",
		},
		{
			id:       "error_debug_assert",
			name:     "No debug_assert! in Handlers",
			category: diag.CatError,
			severity: diag.SevWarning,
			desc:     "debug_assert! can cause panics in debug builds. Prefer explicit error handling.",
			pattern:  `debug_assert!?\s*\(`,
			fix:      "Remove or convert to an explicit error check",
			doc:      "error-handling.md#no-panics",
		},
		{
			id:       "error_missing_context_serde",
			name:     "Serde Deserialize Without Context",
			category: diag.CatError,
			severity: diag.SevWarning,
			desc:     "serde_json::from_* should use .context() for meaningful error messages.",
			pattern:  `serde_json::from_\w+\([^)]+\)\?`,
			fix:      `serde_json::from_slice(&data).context("deserializing MyType").map_err(Into::into)?`,
			doc:      "error-handling.md#context",
		},
		{
			id:       "error_missing_context_parse",
			name:     "Parse Without Context",
			category: diag.CatError,
			severity: diag.SevWarning,
			desc:     "Parsing operations should use .context() for meaningful error messages.",
			pattern:  `\.parse\(\)\?`,
			fix:      `.parse().context("parsing field_name")?`,
			doc:      "error-handling.md#context",
		},
		{
			id:       "error_dynamic_code",
			name:     "Error Code Should Be Static",
			category: diag.CatError,
			severity: diag.SevWarning,
			desc:     "Error codes should be stable static strings, not dynamically generated with format!.",
			pattern:  `code:\s*format!\(`,
			fix:      `code: "error_code".to_string()`,
			doc:      "error-handling.md#error-codes",
		},
		{
			id:       "error_anyhow_in_handler",
			name:     "Use the SDK Error Not anyhow::Error",
			category: diag.CatError,
			severity: diag.SevWarning,
			desc:     "The handler Error type should be the SDK error for proper HTTP status mapping, not anyhow::Error.",
			pattern:  `type\s+Error\s*=\s*anyhow::Error`,
			fix:      "type Error = guest_sdk::Error;",
			doc:      "error-handling.md#error-type",
		},
		{
			id:       "error_map_to_bad_request",
			name:     "Map Parsing Errors to BadRequest",
			category: diag.CatError,
			severity: diag.SevInfo,
			desc:     "Parsing/validation errors should map to bad_request! (400), not server_error! (500).",
			pattern:  `(?:parse|deserialize|validate).*server_error!`,
			fix:      `Use bad_request!("invalid input: {}", err) for client errors`,
			doc:      "error-handling.md#status-codes",
		},
		{
			id:       "error_map_to_bad_gateway",
			name:     "Map Upstream Errors to BadGateway",
			category: diag.CatError,
			severity: diag.SevInfo,
			desc:     "External service/API errors should map to bad_gateway! (502), not server_error! (500).",
			pattern:  `(?:fetch|http|api|upstream).*server_error!`,
			fix:      `Use bad_gateway!("upstream failed: {}", err) for external service errors`,
			doc:      "error-handling.md#status-codes",
		},
		// -------------------- wasm --------------------
		{
			id:       "wasm_std_fs",
			name:     "No std::fs",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "std::fs is not available in WASM32. Use provider abstractions.",
			pattern:  `std::fs::`,
			fix:      "Use the StateStore or TableStore provider",
			doc:      "wasm32.md#forbidden-apis",
		},
		{
			id:       "wasm_std_net",
			name:     "No std::net",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "std::net is not available in WASM32. Use the HttpRequest provider.",
			pattern:  `std::net::`,
			fix:      "Use the HttpRequest provider for network access",
			doc:      "wasm32.md#forbidden-apis",
		},
		{
			id:       "wasm_std_thread",
			name:     "No std::thread",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "std::thread is not available in WASM32. Use async/await.",
			pattern:  `std::thread::`,
			fix:      "Use async/await for concurrency",
			doc:      "wasm32.md#forbidden-apis",
		},
		{
			id:       "wasm_std_env",
			name:     "No std::env",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "std::env is not available in WASM32. Use the Config provider.",
			pattern:  `std::env::`,
			fix:      "Use the Config provider for environment variables",
			doc:      "wasm32.md#forbidden-apis",
		},
		{
			id:       "wasm_std_process",
			name:     "No std::process",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "std::process is not available in WASM32.",
			pattern:  `std::process::`,
			doc:      "wasm32.md#forbidden-apis",
		},
		{
			id:       "wasm_std_time_instant",
			name:     "No std::time::Instant",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "std::time::Instant is not available in WASM32.",
			pattern:  `std::time::Instant`,
			fix:      "Use chrono::Utc::now() for time",
			doc:      "wasm32.md#forbidden-apis",
		},
		{
			id:       "wasm_64bit_integer",
			name:     "Prefer 32-bit Integers",
			category: diag.CatWasm,
			severity: diag.SevWarning,
			desc:     "WASM32 is a 32-bit environment. i64/u64 operations are emulated and slower.",
			pattern:  `:\s*[iu]64\b`,
			fix:      "Use i32/u32 if the value range allows",
			doc:      "wasm32.md#performance",
		},
		{
			id:       "wasm_128bit_integer",
			name:     "Avoid 128-bit Integers",
			category: diag.CatWasm,
			severity: diag.SevWarning,
			desc:     "WASM32 does not natively support 128-bit integers. i128/u128 are heavily emulated and slow.",
			pattern:  `:\s*[iu]128\b`,
			fix:      "Use smaller integer types",
			doc:      "wasm32.md#performance",
		},
		{
			id:       "wasm_isize_usize",
			name:     "Avoid isize/usize for Data",
			category: diag.CatWasm,
			severity: diag.SevHint,
			desc:     "isize/usize vary by platform. Use explicit i32/u32 for data that crosses API boundaries.",
			pattern:  `:\s*[iu]size\b`,
			fix:      "Use i32/u32 for API data, keep usize only for indexing",
			doc:      "wasm32.md#portability",
		},
		{
			id:       "forbidden_tokio",
			name:     "No Tokio Runtime",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "The Tokio runtime is not available in WASM32. WASI provides the executor.",
			pattern:  `use\s+tokio\b`,
			fix:      "Use async/await without an explicit runtime",
			doc:      "wasm32.md#forbidden-crates",
		},
		{
			id:       "forbidden_async_std",
			name:     "No async-std Runtime",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "The async-std runtime is not available in WASM32. WASI provides the executor.",
			pattern:  `use\s+async_std\b`,
			fix:      "Use async/await without an explicit runtime",
			doc:      "wasm32.md#forbidden-crates",
		},
		{
			id:       "forbidden_rayon",
			name:     "No Rayon Parallelism",
			category: diag.CatWasm,
			severity: diag.SevError,
			desc:     "Rayon is not available in WASM32. The guest is single-threaded.",
			pattern:  `use\s+rayon\b`,
			fix:      "Use sequential iterators",
			doc:      "wasm32.md#forbidden-crates",
		},
		// -------------------- stateless --------------------
		{
			id:       "stateless_static_mut",
			name:     "No static mut",
			category: diag.CatStateless,
			severity: diag.SevError,
			desc:     "static mut creates global mutable state. Guest handlers must be stateless.",
			pattern:  `static\s+mut\s+`,
			fix:      "Use the StateStore provider for state persistence",
			doc:      "guardrails.md#statelessness",
		},
		{
			id:       "stateless_lazy_static",
			name:     "No lazy_static",
			category: diag.CatStateless,
			severity: diag.SevError,
			desc:     "lazy_static creates global state. Not allowed in guest handlers.",
			pattern:  `lazy_static!\s*\{`,
			fix:      "Pass state through Context or use the StateStore provider",
			doc:      "guardrails.md#forbidden-crates",
		},
		{
			id:       "stateless_once_cell",
			name:     "No OnceCell/OnceLock",
			category: diag.CatStateless,
			severity: diag.SevError,
			desc:     "OnceCell/OnceLock create global state. Not allowed in guest handlers.",
			pattern:  `(?:OnceCell|OnceLock)`,
			fix:      "Use the StateStore provider",
			doc:      "guardrails.md#forbidden-crates",
		},
		{
			id:       "stateless_lazy_lock",
			name:     "No LazyLock",
			category: diag.CatStateless,
			severity: diag.SevError,
			desc:     "LazyLock (std 1.80+) creates global state which is forbidden in the guest sandbox.",
			pattern:  `LazyLock\s*<`,
			fix:      "Use the Config provider trait instead",
			doc:      "guardrails.md#forbidden-crates",
		},
		{
			id:       "stateless_arc_mutex",
			name:     "Avoid Arc<Mutex>",
			category: diag.CatStateless,
			severity: diag.SevWarning,
			desc:     "Arc<Mutex<T>> suggests shared mutable state. Use the StateStore provider instead.",
			pattern:  `Arc\s*<\s*(?:Mutex|RwLock)`,
			fix:      "Use the StateStore provider for shared state",
			doc:      "guardrails.md#statelessness",
		},
		{
			id:       "stateless_mutex",
			name:     "Avoid Mutex/RwLock",
			category: diag.CatStateless,
			severity: diag.SevWarning,
			desc:     "Mutex and RwLock create shared mutable state. The guest is single-threaded.",
			pattern:  `(?:std::sync::)?(?:Mutex|RwLock)\s*<`,
			fix:      "Use the StateStore provider for shared state",
			doc:      "guardrails.md#statelessness",
		},
		// -------------------- performance --------------------
		{
			id:       "perf_clone_in_loop",
			name:     "Avoid Clone in Loop",
			category: diag.CatPerformance,
			severity: diag.SevHint,
			desc:     "Cloning inside loops may be inefficient. Consider borrowing.",
			pattern:  `for\s+[^{]+\{[^}]*\.clone\s*\(`,
			fix:      "Use references or move ownership",
			doc:      "pragmatic-rust.md",
		},
		{
			id:       "perf_string_add",
			name:     "Prefer format! Over String Concatenation",
			category: diag.CatPerformance,
			severity: diag.SevHint,
			desc:     "String concatenation with + is inefficient. Use format! or push_str.",
			pattern:  `String::new\s*\(\s*\)\s*\+`,
			fix:      `format!("{}{}", a, b)`,
			doc:      "pragmatic-rust.md",
		},
		{
			id:       "perf_unbounded_query",
			name:     "Query Without Limit",
			category: diag.CatPerformance,
			severity: diag.SevWarning,
			desc:     "Database queries should have a limit to prevent unbounded result sets.",
			pattern:  `ctx\.provider\.query\([^)]+\)\.await`,
			fix:      "Add a LIMIT clause or use the .limit() method",
			doc:      "tablestore-handler.md#limits",
		},
		{
			id:       "perf_format_in_loop",
			name:     "Avoid format! in Loops",
			category: diag.CatPerformance,
			severity: diag.SevHint,
			desc:     "format! allocates - consider preallocating strings outside loops.",
			pattern:  `for\s+\w+\s+in[^{]*\{[^}]*format!\(`,
			fix:      "Preallocate a String and use push_str",
			doc:      "pragmatic-rust.md#allocations",
		},
		{
			id:       "perf_collect_count",
			name:     "Use Iterator::count Instead of collect().len()",
			category: diag.CatPerformance,
			severity: diag.SevHint,
			desc:     "Use .count() instead of .collect::<Vec<_>>().len() to avoid allocation.",
			pattern:  `\.collect\(\)\.len\(\)`,
			fix:      ".count()",
			doc:      "pragmatic-rust.md#iterators",
		},
		{
			id:       "println_debug",
			name:     "Avoid println!/eprintln!",
			category: diag.CatPerformance,
			severity: diag.SevHint,
			desc:     "println!/eprintln! may not be visible in the guest sandbox. Use tracing macros.",
			pattern:  `(?:println|eprintln|dbg)!\s*\(`,
			fix:      "Use tracing macros: info!, warn!, error!, debug!",
			doc:      "observability.md#tracing",
		},
		// -------------------- security --------------------
		{
			id:       "security_hardcoded_secret",
			name:     "No Hardcoded Secrets",
			category: diag.CatSecurity,
			severity: diag.SevError,
			desc:     "Secrets must come from the Config provider, never hardcoded.",
			pattern:  `(?:password|secret|api_key|token)\s*:\s*"[a-zA-Z0-9]+`,
			fix:      `let secret = ctx.provider.get("SECRET_KEY")?;`,
			doc:      "guardrails.md#security",
		},
		{
			id:       "security_sql_concat",
			name:     "Avoid SQL String Concatenation",
			category: diag.CatSecurity,
			severity: diag.SevError,
			desc:     "Never concatenate SQL strings - use parameterized queries.",
			pattern:  `format!\s*\(\s*"(?:SELECT|INSERT|UPDATE|DELETE)[^"]*\{\}`,
			fix:      `ctx.provider.query("SELECT * FROM t WHERE id = $1", &[("$1", id)])`,
			doc:      "guardrails.md#security",
		},
		// -------------------- strong typing --------------------
		{
			id:       "type_primitive_string_id",
			name:     "Use Newtypes for IDs",
			category: diag.CatStrongTyping,
			severity: diag.SevWarning,
			desc:     "Use newtype wrappers for identifiers instead of raw String.",
			pattern:  `pub\s+(?:id|\w+_id)\s*:\s*String`,
			fix:      "pub struct VehicleId(pub String);",
			doc:      "pragmatic-rust.md#newtypes",
		},
		{
			id:       "type_string_match",
			name:     "Use Enums Instead of String Matching",
			category: diag.CatStrongTyping,
			severity: diag.SevHint,
			desc:     "Replace string literal matching with typed enums for compile-time safety.",
			pattern:  `match\s+\w+\.as_str\(\)\s*\{[^}]*"[^"]+"\s*=>`,
			fix:      "Define an enum with #[derive(Deserialize)]",
			doc:      "pragmatic-rust.md#enums",
		},
		{
			id:       "type_raw_coordinates",
			name:     "Use Newtypes for Coordinates",
			category: diag.CatStrongTyping,
			severity: diag.SevInfo,
			desc:     "Use newtype wrappers for latitude/longitude instead of raw f64.",
			pattern:  `pub\s+(?:lat(?:itude)?|lon(?:gitude)?)\s*:\s*f(?:32|64)`,
			fix:      "pub struct Latitude(pub f64);",
			doc:      "pragmatic-rust.md#newtypes",
		},
		// -------------------- time --------------------
		{
			id:       "time_system_time_now",
			name:     "No SystemTime::now()",
			category: diag.CatTime,
			severity: diag.SevError,
			desc:     "SystemTime::now() is unreliable in WASM32. Use chrono::Utc::now() instead.",
			pattern:  `SystemTime::now\(\)`,
			fix:      "chrono::Utc::now()",
			doc:      "wasm32.md#time",
		},
		{
			id:       "time_instant_duration",
			name:     "No Instant for Elapsed Time",
			category: diag.CatTime,
			severity: diag.SevError,
			desc:     "Instant::now() and elapsed() are not available in WASM32.",
			pattern:  `Instant::now\(\)\.elapsed\(\)`,
			fix:      "Use chrono timestamps for elapsed time calculations",
			doc:      "wasm32.md#time",
		},
		// -------------------- auth --------------------
		{
			id:       "auth_hardcoded_bearer",
			name:     "No Hardcoded Bearer Tokens",
			category: diag.CatAuth,
			severity: diag.SevError,
			desc:     "Bearer tokens must come from Identity::access_token(), not hardcoded strings.",
			pattern:  `Bearer\s+[A-Za-z0-9._-]{20,}`,
			fix:      `let token = ctx.provider.access_token("service").await?;`,
			doc:      "provider-traits.md#identity",
		},
		// -------------------- caching --------------------
		{
			id:       "cache_missing_ttl",
			name:     "Cache Set Without TTL",
			category: diag.CatCaching,
			severity: diag.SevWarning,
			desc:     "StateStore::set should include a TTL to prevent unbounded cache growth.",
			pattern:  `ctx\.provider\.set\([^)]*,\s*None\s*\)\.await`,
			fix:      "ctx.provider.set(key, value, Some(Duration::from_secs(3600))).await?",
			doc:      "cache-handler.md#ttl",
		},
	}
}
