/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// managectl is the operator CLI against an SD-WAN management controller:
// inventory and alarm reads, template lifecycle, software repository
// actions and tenant backups, all over an authenticated session.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wanctl/manager-go/api"
	"github.com/wanctl/manager-go/internal/config"
	"github.com/wanctl/manager-go/internal/obs/health"
	"github.com/wanctl/manager-go/internal/obs/logging"
	"github.com/wanctl/manager-go/internal/obs/tracing"
	"github.com/wanctl/manager-go/internal/version"
	"github.com/wanctl/manager-go/manager"
	"github.com/wanctl/manager-go/task"
)

var (
	configFile string
	output     string
	timeout    time.Duration
)

func main() {
	// A .env next to the binary is a convenient place for credentials in
	// lab setups; absence is not an error.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "managectl",
		Short: "CLI for SD-WAN management controllers",
		Long:  "Command-line interface for operating an SD-WAN management controller",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML profile file")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table|json)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall command timeout")

	rootCmd.AddCommand(
		versionCmd(),
		statusCmd(),
		devicesCmd(),
		alarmsCmd(),
		tasksCmd(),
		templatesCmd(),
		softwareCmd(),
		backupCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	mgr, err := config.NewManager(configFile)
	if err != nil {
		return nil, err
	}
	defer mgr.Close() //nolint:errcheck
	cfg := mgr.Get()
	if cfg.Controller.URL == "" {
		return nil, fmt.Errorf("no controller URL configured (set MANAGER_URL or use --config)")
	}
	return cfg, nil
}

// connect builds the session and the teardown for one command run.
func connect(ctx context.Context) (*manager.Session, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.Setup(&logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, nil, err
	}
	shutdownTracing, err := tracing.Setup(ctx, &tracing.Config{
		Enabled:           cfg.Tracing.Enabled,
		Endpoint:          cfg.Tracing.Endpoint,
		ServiceName:       "managectl",
		ServiceVersion:    version.Version,
		SamplingRatio:     cfg.Tracing.SamplingRatio,
		InsecureTransport: cfg.Tracing.InsecureTransport,
	})
	if err != nil {
		return nil, nil, err
	}

	session, err := manager.Connect(ctx, manager.Config{
		URL:            cfg.Controller.URL,
		Port:           cfg.Controller.Port,
		Username:       cfg.Controller.Username,
		Password:       cfg.Controller.Password,
		Subdomain:      cfg.Controller.Subdomain,
		VerifyTLS:      cfg.Controller.VerifyTLS,
		Timeout:        cfg.Controller.Timeout,
		RestartTimeout: cfg.Controller.RestartTimeout,
		Logger:         logger,
	})
	if err != nil {
		shutdownTracing()
		return nil, nil, err
	}
	teardown := func() {
		session.Close() //nolint:errcheck
		shutdownTracing()
	}
	return session, teardown, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check controller reachability and identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			checker := health.NewChecker()
			checker.RegisterCheck("controller", health.HTTPCheck(normalizeURL(cfg.Controller.URL)))
			for name, result := range checker.RunAllChecks(ctx) {
				fmt.Printf("%-12s %-10s %s\n", name, result.Status, result.Message)
			}

			session, teardown, err := connect(ctx)
			if err != nil {
				return err
			}
			defer teardown()
			info := session.ServerInfo()
			fmt.Printf("version      %s\n", session.APIVersion())
			fmt.Printf("session      %s\n", session.SessionType())
			fmt.Printf("tenancy      %s\n", info.TenancyMode)
			return nil
		},
	}
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the device inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()
			session, teardown, err := connect(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			devices, err := api.NewMonitoring(session).Devices(ctx)
			if err != nil {
				return err
			}
			if output == "json" {
				return printJSON(devices)
			}
			fmt.Printf("%-24s %-16s %-12s %-10s %s\n", "HOSTNAME", "SYSTEM-IP", "SITE", "REACH", "VERSION")
			for _, d := range devices {
				fmt.Printf("%-24s %-16s %-12s %-10s %s\n",
					d.HostName, d.SystemIP, d.SiteID, d.Reachability, d.Version)
			}
			return nil
		},
	}
}

func tasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List tasks the controller is executing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()
			session, teardown, err := connect(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			running, err := task.Running(ctx, session)
			if err != nil {
				return err
			}
			if output == "json" {
				return printJSON(running)
			}
			fmt.Printf("%-40s %-24s %-16s %s\n", "PROCESS-ID", "NAME", "ACTION", "STATUS")
			for _, r := range running {
				fmt.Printf("%-40s %-24s %-16s %s\n", r.ProcessID, r.Name, r.Action, r.Status)
			}
			return nil
		},
	}
}

func alarmsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "alarms",
		Short: "List alarms",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()
			session, teardown, err := connect(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			alarms, err := api.NewMonitoring(session).Alarms(ctx, limit)
			if err != nil {
				return err
			}
			if output == "json" {
				return printJSON(alarms)
			}
			fmt.Printf("%-10s %-24s %s\n", "SEVERITY", "HOST", "MESSAGE")
			for _, a := range alarms {
				fmt.Printf("%-10s %-24s %s\n", a.Severity, a.HostName, a.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of alarms")
	return cmd
}

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage feature templates",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List feature templates",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext()
				defer cancel()
				session, teardown, err := connect(ctx)
				if err != nil {
					return err
				}
				defer teardown()

				templates, err := api.NewTemplates(session).List(ctx)
				if err != nil {
					return err
				}
				if output == "json" {
					return printJSON(templates)
				}
				fmt.Printf("%-32s %-20s %-8s %s\n", "NAME", "TYPE", "DEVICES", "UPDATED BY")
				for _, t := range templates {
					fmt.Printf("%-32s %-20s %-8d %s\n", t.Name, t.Type, t.DevicesAttached, t.LastUpdatedBy)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a feature template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext()
				defer cancel()
				session, teardown, err := connect(ctx)
				if err != nil {
					return err
				}
				defer teardown()
				return api.NewTemplates(session).Delete(ctx, args[0])
			},
		},
	)
	return cmd
}

func softwareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "software",
		Short: "Manage the software repository",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "images",
			Short: "List repository images",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext()
				defer cancel()
				session, teardown, err := connect(ctx)
				if err != nil {
					return err
				}
				defer teardown()

				images, err := api.NewSoftware(session).Images(ctx)
				if err != nil {
					return err
				}
				if output == "json" {
					return printJSON(images)
				}
				fmt.Printf("%-32s %-16s %s\n", "VERSION", "TYPE", "FILES")
				for _, img := range images {
					fmt.Printf("%-32s %-16s %s\n", img.VersionName, img.VersionType, img.AvailableFiles)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "upload <file>",
			Short: "Upload an image to the repository",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext()
				defer cancel()
				session, teardown, err := connect(ctx)
				if err != nil {
					return err
				}
				defer teardown()

				return api.NewSoftware(session).Upload(ctx, args[0], func(transferred int64) {
					fmt.Printf("\ruploaded %d bytes", transferred)
				})
			},
		},
	)
	return cmd
}

func backupCmd() *cobra.Command {
	var destDir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage tenant backups",
	}
	export := &cobra.Command{
		Use:   "export",
		Short: "Export a backup and download it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			session, teardown, err := connect(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			local, err := api.NewBackup(session).ExportAndDownload(ctx, destDir, &task.WaitOptions{
				Timeout:      cfg.Task.Timeout,
				PollInterval: cfg.Task.PollInterval,
			})
			if err != nil {
				return err
			}
			fmt.Printf("backup written to %s\n", local)
			return nil
		},
	}
	export.Flags().StringVar(&destDir, "dest", ".", "Destination directory")
	cmd.AddCommand(
		export,
		&cobra.Command{
			Use:   "list",
			Short: "List backups stored on the controller",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext()
				defer cancel()
				session, teardown, err := connect(ctx)
				if err != nil {
					return err
				}
				defer teardown()

				files, err := api.NewBackup(session).List(ctx)
				if err != nil {
					return err
				}
				if output == "json" {
					return printJSON(files)
				}
				for _, f := range files {
					fmt.Println(f.FileName)
				}
				return nil
			},
		},
	)
	return cmd
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func normalizeURL(raw string) string {
	if len(raw) < 8 || (raw[:7] != "http://" && raw[:8] != "https://") {
		return "https://" + raw
	}
	return raw
}
