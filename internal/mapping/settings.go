package mapping

import "apiforge/internal/diag"

type Settings struct {
	// GroupByModule hangs namespaces off module nodes. When false the
	// namespaces of every module on a side are merged under the root.
	GroupByModule bool
	// Reporter receives unresolved-forward and duplicate-type warnings.
	Reporter diag.Reporter
}

func DefaultSettings() Settings {
	return Settings{GroupByModule: true}
}
