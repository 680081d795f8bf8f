package resolve

// nodeBuiltins is the set of specifiers treated as Node core modules
// when Options.TargetEnv is "node". A "node:"
// prefix is always recognized regardless of this set.
var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "cluster": true,
	"crypto": true, "dgram": true, "dns": true, "events": true, "fs": true,
	"http": true, "http2": true, "https": true, "net": true, "os": true,
	"path": true, "perf_hooks": true, "process": true, "punycode": true,
	"querystring": true, "readline": true, "repl": true, "stream": true,
	"string_decoder": true, "timers": true, "tls": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "worker_threads": true,
	"zlib": true, "module": true, "inspector": true, "async_hooks": true,
}

func isNodeBuiltin(specifier string) bool {
	if len(specifier) >= len("node:") && specifier[:len("node:")] == "node:" {
		return true
	}
	return nodeBuiltins[specifier]
}
