package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/grocky/whatip-service/internal/client"
	"github.com/grocky/whatip-service/pkg/pubip"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	serverURL  = flag.String("server", client.DefaultServerURL, "whatip server to query")
	direct     = flag.Bool("direct", false, "query the external authority instead of a whatip server")
	asJSON     = flag.Bool("json", false, "print the full info body as JSON")
	timeout    = flag.Duration("timeout", 10*time.Second, "request timeout")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *direct {
		ip, err := pubip.IPWithContext(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ip)
		return nil
	}

	c := client.New(client.Config{
		ServerURL: *serverURL,
		Timeout:   *timeout,
	})

	info, err := c.GetIPInfo(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		js, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(js))
		return nil
	}

	fmt.Println(info.PublicIP)
	return nil
}
