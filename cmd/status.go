package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var url string

	if len(args) == 0 {
		// List all jobs
		url = fmt.Sprintf("%s/api/v1/jobs", serverURL)
		return listJobs(url)
	} else {
		// Get specific job status
		jobID := args[0]
		url = fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID)
		return getJobStatus(url, jobID)
	}
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config, ok := job["config"].(map[string]interface{}); ok {
			if problem, ok := config["problem"].(map[string]interface{}); ok {
				if biases, ok := problem["biases"].([]interface{}); ok {
					fmt.Printf("  Spins: %d\n", len(biases))
				}
			}
		}
		if job["bestEnergy"] != nil {
			fmt.Printf("  Energy: %.2f -> %.2f\n", job["initialEnergy"], job["bestEnergy"])
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	// Display status
	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		if problem, ok := config["problem"].(map[string]interface{}); ok {
			if biases, ok := problem["biases"].([]interface{}); ok {
				fmt.Printf("  Spins: %d\n", len(biases))
			}
			if couplings, ok := problem["couplings"].([]interface{}); ok {
				fmt.Printf("  Couplings: %d\n", len(couplings))
			}
		}
		if anneal, ok := config["anneal"].(map[string]interface{}); ok {
			fmt.Printf("  Initial Temperature: %v\n", anneal["initialTemperature"])
			fmt.Printf("  Final Temperature: %v\n", anneal["finalTemperature"])
			fmt.Printf("  Temperature Steps: %v\n", anneal["temperatureSteps"])
			fmt.Printf("  Sweeps Per Step: %v\n", anneal["sweepsPerStep"])
		}
		fmt.Println()
	}

	fmt.Println("Progress:")
	if status["initialEnergy"] != nil {
		fmt.Printf("  Initial Energy: %.6f\n", status["initialEnergy"])
	}
	if status["bestEnergy"] != nil {
		fmt.Printf("  Best Energy: %.6f\n", status["bestEnergy"])
		if initial, ok := status["initialEnergy"].(float64); ok {
			if best, ok := status["bestEnergy"].(float64); ok {
				fmt.Printf("  Improvement: %.6f\n", initial-best)
			}
		}
	}
	if status["sweeps"] != nil {
		fmt.Printf("  Sweeps: %v\n", status["sweeps"])
	}

	if status["elapsed"] != nil {
		elapsed := time.Duration(status["elapsed"].(float64) * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	}

	if status["sweepsPerSec"] != nil && status["sweepsPerSec"].(float64) > 0 {
		fmt.Printf("  Throughput: %.0f sweeps/sec\n", status["sweepsPerSec"])
	}

	if status["error"] != nil && status["error"].(string) != "" {
		fmt.Printf("\nError: %s\n", status["error"])
	}

	return nil
}
