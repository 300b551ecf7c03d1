/*
Cilantro-serve runs the Cilantro compiler as an HTTP API: POST /compile
accepts a JSON body of {"source": "..."} and returns the compiled WAT module,
authenticated with a bearer token obtained from POST /auth/token.

Usage:

	cilantro-serve [flags]

The flags are:

	-l, --listen ADDRESS
		Listen on the given address, BIND_ADDRESS:PORT or :PORT. Defaults to
		the CILANTRO_LISTEN_ADDRESS environment variable, and if that is
		unset, localhost:8080.

	-s, --secret SECRET
		Secret used to sign JWTs. Defaults to CILANTRO_TOKEN_SECRET, and if
		that is unset, a random secret is generated (all tokens become
		invalid when the server exits; unsuitable for production).

	--keys PATH
		sqlite database of registered API keys. Defaults to keys.db.

	--history PATH
		sqlite database of compile job history. Defaults to history.db.

	--issue-key NAME
		Register a new API key under NAME, print its secret once, and exit
		without starting the server.
*/
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"

	"github.com/shine00chang/cilantro/internal/compiler/check"
	"github.com/shine00chang/cilantro/internal/compiler/codegen"
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/lex"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
	"github.com/shine00chang/cilantro/internal/compiler/scope"
	"github.com/shine00chang/cilantro/internal/compiler/semantic"
	"github.com/shine00chang/cilantro/internal/compiler/stdlib"
	"github.com/shine00chang/cilantro/internal/compiler/trim"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
	"github.com/shine00chang/cilantro/internal/history"
	"github.com/shine00chang/cilantro/internal/version"
	"github.com/shine00chang/cilantro/server/api"
	"github.com/shine00chang/cilantro/server/auth"
	"github.com/shine00chang/cilantro/server/middle"
)

const (
	EnvListen = "CILANTRO_LISTEN_ADDRESS"
	EnvSecret = "CILANTRO_TOKEN_SECRET"
)

var (
	flagListen   = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret   = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagKeysDB   = pflag.String("keys", "keys.db", "Path to the API key registry database.")
	flagHistDB   = pflag.String("history", "history.db", "Path to the compile history database.")
	flagLibrary  = pflag.String("library", "lib.wat", "Path to the standard library WAT source.")
	flagIssueKey = pflag.String("issue-key", "", "Register a new API key under NAME and exit.")
)

func main() {
	pflag.Parse()

	keys, err := auth.Open(*flagKeysDB)
	if err != nil {
		log.Fatalf("FATAL could not open key registry: %s", err)
	}
	defer keys.Close()

	if *flagIssueKey != "" {
		_, secret, err := keys.Issue(context.Background(), *flagIssueKey)
		if err != nil {
			log.Fatalf("FATAL could not issue key: %s", err)
		}
		fmt.Printf("issued key %q, secret: %s\n", *flagIssueKey, secret)
		return
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		listenAddr = "localhost:8080"
	}

	secret := tokenSecret()

	hist, err := history.Open(*flagHistDB)
	if err != nil {
		log.Fatalf("FATAL could not open history database: %s", err)
	}
	defer hist.Close()

	libBytes, err := os.ReadFile(*flagLibrary)
	if err != nil {
		log.Fatalf("FATAL could not read library %s: %s", *flagLibrary, err)
	}
	libSrc := string(libBytes)

	lib, err := stdlib.Load(libSrc)
	if err != nil {
		log.Fatalf("FATAL invalid library %s: %s", *flagLibrary, err)
	}

	a := api.API{
		Keys:         keys,
		Secret:       secret,
		UnauthDelay:  time.Second,
		Compile:      compileFunc(lib, libSrc),
		Library:      libSrc,
		ReserveBytes: lib.ReservedBytes,
		History:      hist,
	}

	r := chi.NewRouter()
	r.Use(middle.DontPanic())
	r.Route(api.PathPrefix, func(r chi.Router) {
		r.Get("/info", a.HTTPGetInfo())
		r.Post("/auth/token", a.HTTPCreateToken())
		r.Group(func(r chi.Router) {
			r.Use(middle.RequireAuth(keys, secret, a.UnauthDelay))
			r.Post("/compile", a.HTTPCompile())
		})
	})

	log.Printf("INFO  cilantro-serve %s listening on %s", version.Current, listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		log.Fatalf("FATAL server exited: %s", err)
	}
}

// compileFunc closes over the loaded standard library and returns the
// function api.API.Compile invokes per request: the same lex -> parse ->
// trim -> scope -> extract -> check -> codegen pipeline cmd/cilantroc runs,
// minus the trace printing, since a request has no terminal to print to.
func compileFunc(lib *stdlib.Library, librarySource string) func(source, library string, reserveBytes int) (string, error) {
	return func(source, _ string, reserveBytes int) (string, error) {
		toks, err := lex.Lex(source)
		if err != nil {
			return "", err
		}

		g := grammar.Cilantro()
		table, err := parse.BuildTable(g)
		if err != nil {
			return "", err
		}

		roots, err := parse.Parse(g, table, toks, source)
		if err != nil {
			return "", err
		}

		trimmed := make([]*tree.Node, 0, len(roots))
		for _, r := range roots {
			trimmed = append(trimmed, trim.Trim(r).Node)
		}

		if err := scope.Resolve(trimmed, lib.Names()); err != nil {
			return "", err
		}

		semNodes := make([]*semantic.Node, 0, len(trimmed))
		for _, n := range trimmed {
			sn, err := semantic.Extract(n)
			if err != nil {
				return "", err
			}
			semNodes = append(semNodes, sn)
		}

		checkTable := check.NewTable()
		if err := lib.PopulateTypeTable(checkTable); err != nil {
			return "", err
		}
		if err := check.Check(semNodes, checkTable); err != nil {
			return "", err
		}

		return codegen.Generate(semNodes, reserveBytes, librarySource)
	}
}

// tokenSecret resolves the JWT signing secret from flags, environment, or a
// freshly generated random value. Grounded on cmd/tqserver's secret
// handling, minus the TunaQuest-specific 32-64 byte length enforcement
// (HS512 accepts any nonzero-length key).
func tokenSecret() []byte {
	secretStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		secretStr = *flagSecret
	}
	if secretStr != "" {
		return []byte(secretStr)
	}

	secret := make([]byte, 64)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("FATAL could not generate token secret: %s", err)
	}
	log.Printf("WARN  using generated token secret; all tokens issued will become invalid at shutdown")
	return secret
}
