package diag

// Category groups rules by the concern they police.
// The set is closed; manifest keys use the snake_case form from Key.
type Category uint8

const (
	// CatHandler covers Handler trait implementation rules.
	CatHandler Category = iota
	// CatProvider covers provider trait usage rules.
	CatProvider
	// CatContext covers Context usage rules.
	CatContext
	// CatError covers error handling rules.
	CatError
	// CatResponse covers Reply/Response rules.
	CatResponse
	// CatWasm covers WASM32 compatibility rules.
	CatWasm
	// CatStateless covers statelessness rules.
	CatStateless
	// CatPerformance covers performance rules.
	CatPerformance
	// CatSecurity covers security rules.
	CatSecurity
	// CatStrongTyping covers newtype/enum-over-string rules.
	CatStrongTyping
	// CatCaching covers StateStore caching rules.
	CatCaching
	// CatTime covers time handling rules.
	CatTime
	// CatAuth covers authentication and authorization rules.
	CatAuth
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CatHandler,
	CatProvider,
	CatContext,
	CatError,
	CatResponse,
	CatWasm,
	CatStateless,
	CatPerformance,
	CatSecurity,
	CatStrongTyping,
	CatCaching,
	CatTime,
	CatAuth,
}

// Key returns the snake_case manifest key for the category.
func (c Category) Key() string {
	switch c {
	case CatHandler:
		return "handler"
	case CatProvider:
		return "provider"
	case CatContext:
		return "context"
	case CatError:
		return "error"
	case CatResponse:
		return "response"
	case CatWasm:
		return "wasm"
	case CatStateless:
		return "stateless"
	case CatPerformance:
		return "performance"
	case CatSecurity:
		return "security"
	case CatStrongTyping:
		return "strong_typing"
	case CatCaching:
		return "caching"
	case CatTime:
		return "time"
	case CatAuth:
		return "auth"
	}
	return "unknown"
}

// CategoryFromKey resolves a snake_case manifest key to a Category.
func CategoryFromKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key() == key {
			return c, true
		}
	}
	return 0, false
}

func (c Category) String() string {
	return c.Key()
}
