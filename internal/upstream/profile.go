package upstream

import "time"

// Casing is the key casing an upstream uses in its JSON objects.
type Casing int

const (
	CasingCamel Casing = iota
	CasingSnake
	// CasingMixed means keys are usually PascalCase but not consistently, lookups
	// fall back to a case-insensitive match.
	CasingMixed
)

// Envelope is the shape a response body takes around its records.
type Envelope int

const (
	// EnvelopeBare is a bare array of records, or a single object standing for one record.
	EnvelopeBare Envelope = iota
	// EnvelopeData is {"dados": [...], "links": [{"rel": "next", "href": ...}]}.
	EnvelopeData
	// EnvelopeArchive is a compressed archive, bodies are never decoded as JSON.
	EnvelopeArchive
)

type Pagination int

const (
	PaginationSingleShot Pagination = iota
	PaginationLinked
)

// Profile describes everything that differs between upstream APIs. Adding a new upstream is
// adding a Profile value, no client code changes.
type Profile struct {
	Name    string
	BaseURL string
	// Suffix is appended to every path unless the request opts out with WithoutSuffix.
	Suffix    string
	UserAgent string
	// Delay is slept after every successful call.
	Delay   time.Duration
	Timeout time.Duration

	Casing     Casing
	Envelope   Envelope
	Pagination Pagination

	PageSizeParam string
	PageSize      int
	MaxPages      int
}

const (
	defaultTimeout = 60 * time.Second
	userAgent      = "Brazil-Congress-Dashboard/1.0 (civic-tech transparency)"
)

// LegisProfile is the Senate legislative API, responses are deeply nested PascalCase objects.
func LegisProfile() Profile {
	return Profile{
		Name:       "legis",
		BaseURL:    "https://legis.senado.leg.br/dadosabertos",
		Suffix:     ".json",
		UserAgent:  userAgent,
		Delay:      150 * time.Millisecond,
		Timeout:    defaultTimeout,
		Casing:     CasingMixed,
		Envelope:   EnvelopeBare,
		Pagination: PaginationSingleShot,
	}
}

// AdmProfile is the Senate administrative API, responses are bare arrays in camelCase.
func AdmProfile() Profile {
	return Profile{
		Name:       "adm",
		BaseURL:    "https://adm.senado.gov.br/adm-dadosabertos",
		UserAgent:  userAgent,
		Delay:      300 * time.Millisecond,
		Timeout:    defaultTimeout,
		Casing:     CasingCamel,
		Envelope:   EnvelopeBare,
		Pagination: PaginationSingleShot,
	}
}

// CamaraProfile is the Chamber of Deputies API v2.
func CamaraProfile() Profile {
	return Profile{
		Name:          "camara",
		BaseURL:       "https://dadosabertos.camara.leg.br/api/v2",
		UserAgent:     userAgent,
		Delay:         100 * time.Millisecond,
		Timeout:       defaultTimeout,
		Casing:        CasingCamel,
		Envelope:      EnvelopeData,
		Pagination:    PaginationLinked,
		PageSizeParam: "itens",
		PageSize:      100,
		MaxPages:      500,
	}
}

// CGUProfile is the transparency portal bulk download site, archives are large so the
// timeout is much longer than the JSON APIs.
func CGUProfile() Profile {
	return Profile{
		Name:       "cgu",
		BaseURL:    "https://dadosabertos-download.cgu.gov.br/PortalDaTransparencia/saida",
		UserAgent:  userAgent,
		Delay:      time.Second,
		Timeout:    300 * time.Second,
		Casing:     CasingSnake,
		Envelope:   EnvelopeArchive,
		Pagination: PaginationSingleShot,
	}
}
