// Package app wires the malnutrition dashboard together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and MALNUTRITION_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Load the survey extract (fatal on failure)
//	4. Fetch the State and District boundary documents concurrently
//	5. Reconcile place names and freeze the dashboard context
//	6. Set up HTTP handlers and middleware
//	7. Start the HTTP server and wait for SIGINT or SIGTERM
//
// A boundary document that cannot be fetched only disables the map of its
// level; readiness then reports "degraded".
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    slog.Error("Failed to initialize application", slog.String("error", err.Error()))
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
package app
