package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultAPIAddr = "tcp://0.0.0.0:7650"
	defaultAPIPort = 7650
)

type flagDescriber interface {
	VisitAll(fn func(*flag.Flag))
}

func usageFor(fs flagDescriber, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func parseAddr(addr string, defaultPort int) (network, address string, err error) {
	u, err := url.Parse(strings.ToLower(addr))
	if err != nil {
		return network, address, err
	}

	switch {
	case u.Scheme == "" && u.Opaque == "" && u.Host == "" && u.Path != "": // "addr"
		u.Scheme, u.Opaque, u.Host, u.Path = "tcp", "", u.Path, ""
	case u.Scheme != "" && u.Opaque != "" && u.Host == "" && u.Path == "": // "addr:port"
		u.Scheme, u.Opaque, u.Host, u.Path = "tcp", "", u.Scheme+":"+u.Opaque, ""
	case u.Scheme != "" && u.Opaque == "" && u.Host != "" && u.Path == "": // "scheme://addr[:port]"
	default:
		return network, address, errors.Errorf("%s: unsupported address format", addr)
	}

	var (
		host = u.Host
		port = strconv.Itoa(defaultPort)
	)
	if h, p, e := net.SplitHostPort(u.Host); e == nil {
		host = h
		if p != "" {
			port = p
		}
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return u.Scheme, net.JoinHostPort(host, port), nil
}

func envName(name string) string {
	return strings.ToUpper(strings.Replace(name, ".", "_", -1))
}

func registerMetrics(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}

func registerProfile(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}
