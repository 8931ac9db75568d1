// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/validation"
	"wms-dispatch/pkg/registry"

	sbs "wms-dispatch/internal/workers/notification/send-bulk-sms"
	sps "wms-dispatch/internal/workers/notification/send-parcel-sms"
	ssu "wms-dispatch/internal/workers/notification/send-status-update"
	slo "wms-dispatch/internal/workers/session/session-logout"
)

const defaultPath = "configs/activity-registry.json"

// workerSpec describes one job worker as it is built into the dispatch manager.
type workerSpec struct {
	TaskType     string
	DisplayName  string
	Description  string
	Category     string
	Timeout      time.Duration
	Input        validation.JSONSchema
	Output       validation.JSONSchema
	ErrorCodes   []errors.ErrorCode
	Tags         []string
	DefaultRetry int
}

func workers() []workerSpec {
	return []workerSpec{
		{
			TaskType:    sps.TaskType,
			DisplayName: "Send Parcel SMS",
			Description: "Renders a template for the senders and receivers of selected parcels and sends it through the SMS gateway",
			Category:    "notification",
			Timeout:     sps.DefaultConfig().Timeout,
			Input:       sps.GetInputSchema(),
			Output:      sps.GetOutputSchema(),
			ErrorCodes: []errors.ErrorCode{
				errors.ErrCodeInputValidationFailed,
				errors.ErrCodePreSendValidationFailed,
				errors.ErrCodeParcelNotFound,
				errors.ErrCodeQueryTimeout,
			},
			Tags:         []string{"sms", "parcel"},
			DefaultRetry: 3,
		},
		{
			TaskType:    sbs.TaskType,
			DisplayName: "Send Bulk SMS",
			Description: "Sends one free-text message to a list of phone numbers",
			Category:    "notification",
			Timeout:     sbs.DefaultConfig().Timeout,
			Input:       sbs.GetInputSchema(),
			Output:      sbs.GetOutputSchema(),
			ErrorCodes: []errors.ErrorCode{
				errors.ErrCodeInputValidationFailed,
				errors.ErrCodePreSendValidationFailed,
			},
			Tags:         []string{"sms", "bulk"},
			DefaultRetry: 3,
		},
		{
			TaskType:    ssu.TaskType,
			DisplayName: "Send Status Update",
			Description: "Tells the sender and receiver of a parcel that its status changed",
			Category:    "notification",
			Timeout:     ssu.DefaultConfig().Timeout,
			Input:       ssu.GetInputSchema(),
			Output:      ssu.GetOutputSchema(),
			ErrorCodes: []errors.ErrorCode{
				errors.ErrCodeInputValidationFailed,
				errors.ErrCodePreSendValidationFailed,
				errors.ErrCodeParcelNotFound,
			},
			Tags:         []string{"sms", "parcel", "status"},
			DefaultRetry: 3,
		},
		{
			TaskType:    slo.TaskType,
			DisplayName: "Session Logout",
			Description: "Ends one session or every session of a user",
			Category:    "session",
			Timeout:     slo.DefaultConfig().Timeout,
			Input:       slo.GetInputSchema(),
			Output:      slo.GetOutputSchema(),
			ErrorCodes: []errors.ErrorCode{
				errors.ErrCodeInputValidationFailed,
				errors.ErrCodeSessionStoreFailed,
			},
			Tags:         []string{"session"},
			DefaultRetry: 3,
		},
	}
}

func main() {
	syncCmd := flag.NewFlagSet("sync", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	syncPath := syncCmd.String("path", defaultPath, "Path to registry file")
	version := syncCmd.String("version", "1.0.0", "Version recorded for every synced activity")

	updatePath := updateCmd.String("path", defaultPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sync":
		syncCmd.Parse(os.Args[2:])
		added, updated, err := syncRegistry(*syncPath, *version, time.Now())
		if err != nil {
			fmt.Printf("Error syncing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Synced registry: %d added, %d updated\n", added, updated)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err == nil {
			err = reg.Validate()
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "help":
		fallthrough
	default:
		help()
	}
}

// syncRegistry writes every built-in worker into the registry at path.
func syncRegistry(path, version string, now time.Time) (added, updated int, err error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, 0, fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	for _, w := range workers() {
		a, err := toActivity(w, version)
		if err != nil {
			return 0, 0, err
		}
		if reg.Upsert(a, now) {
			added++
		} else {
			updated++
		}
	}

	if err := reg.Validate(); err != nil {
		return 0, 0, err
	}
	return added, updated, reg.Save(path)
}

func toActivity(w workerSpec, version string) (registry.Activity, error) {
	input, err := schemaMap(w.Input)
	if err != nil {
		return registry.Activity{}, fmt.Errorf("%s input schema: %w", w.TaskType, err)
	}
	output, err := schemaMap(w.Output)
	if err != nil {
		return registry.Activity{}, fmt.Errorf("%s output schema: %w", w.TaskType, err)
	}

	codes := make([]string, len(w.ErrorCodes))
	for i, c := range w.ErrorCodes {
		codes[i] = string(c)
	}

	return registry.Activity{
		ID:                   w.TaskType,
		DisplayName:          w.DisplayName,
		Description:          w.Description,
		Category:             w.Category,
		Version:              version,
		TaskType:             w.TaskType,
		ImplementationStatus: registry.StatusCompleted,
		InputSchema:          input,
		OutputSchema:         output,
		ErrorCodes:           codes,
		Timeout:              w.Timeout.String(),
		Retries:              w.DefaultRetry,
		Tags:                 w.Tags,
	}, nil
}

func schemaMap(s validation.JSONSchema) (map[string]interface{}, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	a, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		if !registry.KnownStatus(value) {
			return fmt.Errorf("unknown status: %s", value)
		}
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	case "workflow":
		a.Workflows = append(a.Workflows, value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return reg.Save(path)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  sync     Write every built-in job worker into the registry
  update   Update an existing activity's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater sync -version 1.1.0
  registry-updater update -id send-parcel-sms -field workflow -value parcel-dispatch
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
