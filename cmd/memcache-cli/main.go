// Command memcache-cli is a small interactive client for memcached using
// the meta protocol.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quietbit/memcache"
)

var (
	server  = flag.String("server", "127.0.0.1:11211", "memcached server address")
	timeout = flag.Duration("timeout", 5*time.Second, "operation timeout")
	verbose = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	fmt.Println("Memcache CLI Tool")
	fmt.Println("=================")
	fmt.Println("Commands: get <key>, set <key> <value> [ttl_seconds], delete <key>,")
	fmt.Println("          incr <key> [delta], decr <key> [delta], stats, quit")
	fmt.Println()

	client, err := memcache.NewClient(memcache.NewStaticServers(*server), memcache.Config{
		MaxSize:             2,
		HealthCheckInterval: 30 * time.Second,
	})
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(parts) == 0 {
			continue
		}

		if strings.ToLower(parts[0]) == "quit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		runCommand(ctx, client, parts)
		cancel()
	}
}

func runCommand(ctx context.Context, client *memcache.Client, parts []string) {
	switch strings.ToLower(parts[0]) {
	case "get":
		if len(parts) != 2 {
			fmt.Println("Usage: get <key>")
			return
		}
		value, err := client.Get(ctx, parts[1])
		if errors.Is(err, memcache.ErrCacheMiss) {
			fmt.Println("(not found)")
			return
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("%s\n", value)

	case "set":
		if len(parts) < 3 || len(parts) > 4 {
			fmt.Println("Usage: set <key> <value> [ttl_seconds]")
			return
		}
		var ttl time.Duration
		if len(parts) == 4 {
			seconds, err := strconv.Atoi(parts[3])
			if err != nil {
				fmt.Printf("Invalid TTL: %v\n", err)
				return
			}
			ttl = time.Duration(seconds) * time.Second
		}
		if err := client.Set(ctx, parts[1], []byte(parts[2]), ttl); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("OK")

	case "delete":
		if len(parts) != 2 {
			fmt.Println("Usage: delete <key>")
			return
		}
		err := client.Delete(ctx, parts[1])
		if errors.Is(err, memcache.ErrCacheMiss) {
			fmt.Println("(not found)")
			return
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("OK")

	case "incr", "decr":
		if len(parts) < 2 || len(parts) > 3 {
			fmt.Printf("Usage: %s <key> [delta]\n", parts[0])
			return
		}
		delta := uint64(1)
		if len(parts) == 3 {
			var err error
			delta, err = strconv.ParseUint(parts[2], 10, 64)
			if err != nil {
				fmt.Printf("Invalid delta: %v\n", err)
				return
			}
		}

		var result uint64
		var err error
		if strings.ToLower(parts[0]) == "incr" {
			result, err = client.Increment(ctx, parts[1], delta)
		} else {
			result, err = client.Decrement(ctx, parts[1], delta)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println(result)

	case "stats":
		stats := client.Stats()
		fmt.Printf("gets=%d hits=%d sets=%d deletes=%d incrs=%d decrs=%d errors=%d\n",
			stats.Gets, stats.GetHits, stats.Sets, stats.Deletes,
			stats.Increments, stats.Decrements, stats.Errors)
		for _, ps := range client.AllPoolStats() {
			fmt.Printf("pool %s: total=%d idle=%d active=%d created=%d destroyed=%d\n",
				ps.Addr, ps.PoolStats.TotalConns, ps.PoolStats.IdleConns,
				ps.PoolStats.ActiveConns, ps.PoolStats.CreatedConns,
				ps.PoolStats.DestroyedConns)
		}

	default:
		fmt.Printf("Unknown command: %s\n", parts[0])
	}
}
