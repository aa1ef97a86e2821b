// Sweeper applies data-retention policies to a code-analysis database.
//
// It removes aborted analyses, drops the detail data of past analyses,
// disables components that left the project tree and deletes old closed
// issues, all in one transaction per root project.
//
// Usage:
//
//	# Purge the roots listed in the configuration
//	sweeper purge --config sweeper.yaml
//
//	# Purge one root, also dropping directory history
//	sweeper purge --root 7f3c... --clean-directories
//
//	# Delete a project and everything under it
//	sweeper delete-project 7f3c... --yes
//
//	# List the analyses of a component
//	sweeper analyses 7f3c... --output csv
//
//	# Run the scheduler with a metrics endpoint
//	sweeper schedule --config sweeper.yaml
package main

func main() {
	Execute()
}
