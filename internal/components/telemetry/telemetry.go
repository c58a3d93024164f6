package telemetry

// API is the single reporting surface of the extraction code. Components never log directly,
// which lets tests assert on what was reported through a Recorder.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that failed in a way someone should look at.
	//
	// The id names the component, not the input that broke it: a failed monthly window inside
	// the votacoes extractor is `votacoes.fetch-window`, the window itself goes in params.
	// Ids are lowercase, underscores separate words of a component, dashes separate a method
	// from its component. ScopedAPI supplies the package, so `<struct>.<method>` is usually enough.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that did not fail but may need investigating, like rows
	// dropped for a missing key. Ids follow ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug is only shown with -v.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a point-in-time count, values are samples and must not be summed.
	ReportCount(id string, count int64)

	// ReportProgress reports the outcome of one unit of work (a window, an entity, an archive).
	// Params are key/value pairs, the label is what an operator watching the run reads.
	ReportProgress(label string, params ...any)
}

// ScopedAPI prefixes every id, message and label with a namespace, "votacoes: window".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return s.namespace + ": " + id
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}

func (s ScopedAPI) ReportProgress(label string, params ...any) {
	s.inner.ReportProgress(s.scope(label), params...)
}
