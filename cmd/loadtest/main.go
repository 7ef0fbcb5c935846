package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/dalfonso89/currency-converter/internal/models"
)

// LoadTestConfig holds configuration for load testing
type LoadTestConfig struct {
	URL             string
	Base            string
	Targets         []string
	Amount          float64
	ConcurrentUsers int
	RequestsPerUser int
	Timeout         time.Duration
	TestDuration    time.Duration
	RampUpDuration  time.Duration
	ThinkTime       time.Duration
}

// LoadTestResult holds the result of a single conversion request
type LoadTestResult struct {
	UserID     int
	RequestID  string
	StatusCode int
	Duration   time.Duration
	Success    bool
	Converted  int
	Error      error
}

// LoadTestSummary holds the summary of load test results
type LoadTestSummary struct {
	TotalRequests       int
	SuccessfulRequests  int
	FailedRequests      int
	ConvertedTargets    int
	TotalDuration       time.Duration
	AverageResponseTime time.Duration
	MinResponseTime     time.Duration
	MaxResponseTime     time.Duration
	RequestsPerSecond   float64
	ErrorRate           float64
	ResponseTime95th    time.Duration
	ResponseTime99th    time.Duration
}

func main() {
	var config LoadTestConfig
	var targets string

	flag.StringVar(&config.URL, "url", "http://localhost:8081/api/v1/convert", "Convert endpoint to test")
	flag.StringVar(&config.Base, "base", "USD", "Base currency")
	flag.StringVar(&targets, "targets", "EUR,GBP", "Comma separated target currencies")
	flag.Float64Var(&config.Amount, "amount", 100, "Amount to convert")
	flag.IntVar(&config.ConcurrentUsers, "users", 10, "Number of concurrent users")
	flag.IntVar(&config.RequestsPerUser, "requests", 20, "Number of requests per user")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Request timeout")
	flag.DurationVar(&config.TestDuration, "duration", 0, "Test duration (0 = run until all requests complete)")
	flag.DurationVar(&config.RampUpDuration, "rampup", 2*time.Second, "Ramp-up duration")
	flag.DurationVar(&config.ThinkTime, "think", 100*time.Millisecond, "Think time between requests")
	flag.Parse()

	config.Targets = strings.Split(targets, ",")
	if config.ConcurrentUsers <= 0 {
		fmt.Fprintln(os.Stderr, "users must be positive")
		os.Exit(2)
	}

	fmt.Printf("Load testing %s\n", config.URL)
	fmt.Printf("Conversion: %v %s -> %s\n", config.Amount, config.Base, strings.Join(config.Targets, ","))
	fmt.Printf("Users: %d, requests per user: %d\n\n", config.ConcurrentUsers, config.RequestsPerUser)

	summary := runLoadTest(config)
	printSummary(os.Stdout, summary)
}

func runLoadTest(config LoadTestConfig) LoadTestSummary {
	payload, _ := json.Marshal(map[string]interface{}{
		"base":    config.Base,
		"targets": config.Targets,
		"amount":  config.Amount,
	})

	results := make(chan LoadTestResult, config.ConcurrentUsers*config.RequestsPerUser)
	client := &http.Client{Timeout: config.Timeout}
	startTime := time.Now()

	ctx := context.Background()
	if config.TestDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.TestDuration)
		defer cancel()
	}

	var wg sync.WaitGroup
	rampUpDelay := config.RampUpDuration / time.Duration(config.ConcurrentUsers)

	for userID := 0; userID < config.ConcurrentUsers; userID++ {
		wg.Add(1)
		go func(uid int) {
			defer wg.Done()
			time.Sleep(time.Duration(uid) * rampUpDelay)

			for i := 0; i < config.RequestsPerUser; i++ {
				if ctx.Err() != nil {
					return
				}

				results <- convert(ctx, client, config.URL, payload, uid)

				if config.ThinkTime > 0 {
					time.Sleep(config.ThinkTime)
				}
			}
		}(userID)
	}

	wg.Wait()
	close(results)

	collected := make([]LoadTestResult, 0, config.ConcurrentUsers*config.RequestsPerUser)
	for result := range results {
		collected = append(collected, result)
	}
	return summarize(collected, time.Since(startTime))
}

// convert posts one conversion and counts the records in the response
func convert(ctx context.Context, client *http.Client, url string, payload []byte, userID int) LoadTestResult {
	result := LoadTestResult{UserID: userID, RequestID: uuid.NewString()}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		result.Error = err
		return result
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Request-ID", result.RequestID)

	start := time.Now()
	response, err := client.Do(request)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	defer response.Body.Close()

	result.StatusCode = response.StatusCode
	result.Success = response.StatusCode == http.StatusOK

	var body models.ConversionResult
	if err := json.NewDecoder(response.Body).Decode(&body); err == nil {
		result.Converted = len(body.Records)
	}
	io.Copy(io.Discard, response.Body)

	return result
}

func summarize(results []LoadTestResult, totalDuration time.Duration) LoadTestSummary {
	summary := LoadTestSummary{TotalDuration: totalDuration}
	if len(results) == 0 {
		return summary
	}

	responseTimes := make([]time.Duration, 0, len(results))
	var totalResponseTime time.Duration

	for _, result := range results {
		summary.TotalRequests++
		summary.ConvertedTargets += result.Converted
		if result.Success {
			summary.SuccessfulRequests++
		} else {
			summary.FailedRequests++
		}
		responseTimes = append(responseTimes, result.Duration)
		totalResponseTime += result.Duration
	}

	sort.Slice(responseTimes, func(i, j int) bool { return responseTimes[i] < responseTimes[j] })

	summary.ErrorRate = float64(summary.FailedRequests) / float64(summary.TotalRequests) * 100
	if totalDuration > 0 {
		summary.RequestsPerSecond = float64(summary.TotalRequests) / totalDuration.Seconds()
	}
	summary.MinResponseTime = responseTimes[0]
	summary.MaxResponseTime = responseTimes[len(responseTimes)-1]
	summary.AverageResponseTime = totalResponseTime / time.Duration(len(responseTimes))
	summary.ResponseTime95th = percentile(responseTimes, 95)
	summary.ResponseTime99th = percentile(responseTimes, 99)

	return summary
}

// percentile expects sorted input
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	index := len(sorted) * p / 100
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func printSummary(out io.Writer, summary LoadTestSummary) {
	fmt.Fprintln(out, "=== Load Test Results ===")
	fmt.Fprintf(out, "Total Requests: %d\n", summary.TotalRequests)
	if summary.TotalRequests == 0 {
		return
	}
	fmt.Fprintf(out, "Successful Requests: %d (%.2f%%)\n", summary.SuccessfulRequests,
		float64(summary.SuccessfulRequests)/float64(summary.TotalRequests)*100)
	fmt.Fprintf(out, "Failed Requests: %d (%.2f%%)\n", summary.FailedRequests, summary.ErrorRate)
	fmt.Fprintf(out, "Converted Targets: %d\n", summary.ConvertedTargets)
	fmt.Fprintf(out, "Total Duration: %v\n", summary.TotalDuration)
	fmt.Fprintf(out, "Requests per Second: %.2f\n", summary.RequestsPerSecond)
	fmt.Fprintf(out, "Average Response Time: %v\n", summary.AverageResponseTime)
	fmt.Fprintf(out, "Min/Max Response Time: %v / %v\n", summary.MinResponseTime, summary.MaxResponseTime)
	fmt.Fprintf(out, "95th/99th Percentile: %v / %v\n", summary.ResponseTime95th, summary.ResponseTime99th)

	good := color.New(color.FgGreen)
	bad := color.New(color.FgYellow)

	fmt.Fprintln(out, "\n=== Performance Assessment ===")
	if summary.ErrorRate > 5.0 {
		bad.Fprintf(out, "High error rate: %.2f%% (target: < 5%%)\n", summary.ErrorRate)
	} else {
		good.Fprintf(out, "Error rate: %.2f%% (good)\n", summary.ErrorRate)
	}

	if summary.AverageResponseTime > 2*time.Second {
		bad.Fprintf(out, "High average response time: %v (target: < 2s)\n", summary.AverageResponseTime)
	} else {
		good.Fprintf(out, "Average response time: %v (good)\n", summary.AverageResponseTime)
	}
}
