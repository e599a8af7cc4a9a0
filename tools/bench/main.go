package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 好友关系压测：每个协程持有一对用户，循环执行 请求 -> 接受 -> 删除

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	base string
	http *http.Client
}

func (c *client) do(method, path, token string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

type account struct {
	ID    uint
	Token string
}

func (c *client) register() (*account, error) {
	name := "bench_" + uuid.NewString()[:12]
	var out struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	code, err := c.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@bench.local",
		"password": "bench-password",
	}, &out)
	if err != nil {
		return nil, err
	}
	if code != http.StatusCreated {
		return nil, fmt.Errorf("register %s: status %d", name, code)
	}
	return &account{ID: out.User.ID, Token: out.AccessToken}, nil
}

// -------------------- 统计 --------------------

type opStats struct {
	mu        sync.Mutex
	latencies map[string][]time.Duration
	failures  map[string]int
}

func newOpStats() *opStats {
	return &opStats{
		latencies: make(map[string][]time.Duration),
		failures:  make(map[string]int),
	}
}

func (s *opStats) add(op string, ok bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.failures[op]++
		return
	}
	s.latencies[op] = append(s.latencies[op], latency)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func (s *opStats) report(took time.Duration) {
	fmt.Println("\n=== 好友关系压测结果 ===")
	fmt.Printf("耗时: %v\n", took)
	total := 0
	for _, op := range []string{"request", "accept", "remove"} {
		lat := s.latencies[op]
		sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
		total += len(lat)
		fmt.Printf("%-8s 成功: %-6d 失败: %-4d p50: %-10v p95: %-10v p99: %-10v max: %v\n",
			op, len(lat), s.failures[op],
			percentile(lat, 0.50), percentile(lat, 0.95), percentile(lat, 0.99), percentile(lat, 1),
		)
	}
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(total)/took.Seconds())
	}
}

// -------------------- 压测 --------------------

func (c *client) cycle(a, b *account, stats *opStats) {
	var created struct {
		ID uint `json:"id"`
	}
	start := time.Now()
	code, err := c.do(http.MethodPost, "/friendships", a.Token, map[string]uint{"friend_id": b.ID}, &created)
	stats.add("request", err == nil && code == http.StatusCreated, time.Since(start))
	if err != nil || code != http.StatusCreated {
		return
	}
	path := "/friendships/" + strconv.FormatUint(uint64(created.ID), 10)

	start = time.Now()
	code, err = c.do(http.MethodPatch, path, b.Token, nil, &struct{}{})
	stats.add("accept", err == nil && code == http.StatusOK, time.Since(start))

	start = time.Now()
	code, err = c.do(http.MethodDelete, path, a.Token, nil, nil)
	stats.add("remove", err == nil && code == http.StatusNoContent, time.Since(start))
}

func main() {
	base := flag.String("base", "http://localhost:8080", "server base url")
	concurrency := flag.Int("c", 5, "concurrent user pairs")
	cycles := flag.Int("n", 20, "request/accept/remove cycles per pair")
	flag.Parse()

	c := &client{base: *base, http: &http.Client{Timeout: 8 * time.Second}}

	fmt.Println("=== skillnet 好友关系压测 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("目标: %s 并发: %d 每对循环: %d\n", *base, *concurrency, *cycles)

	type pair struct{ a, b *account }
	pairs := make([]pair, 0, *concurrency)
	for i := 0; i < *concurrency; i++ {
		a, err := c.register()
		if err != nil {
			fmt.Println("注册用户失败:", err)
			os.Exit(1)
		}
		b, err := c.register()
		if err != nil {
			fmt.Println("注册用户失败:", err)
			os.Exit(1)
		}
		pairs = append(pairs, pair{a, b})
	}

	stats := newOpStats()
	var wg sync.WaitGroup
	start := time.Now()
	for _, p := range pairs {
		wg.Add(1)
		go func(p pair) {
			defer wg.Done()
			for j := 0; j < *cycles; j++ {
				c.cycle(p.a, p.b, stats)
			}
		}(p)
	}
	wg.Wait()

	stats.report(time.Since(start))
	fmt.Println("\n=== 测试完成 ===")
}
