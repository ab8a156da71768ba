// Package files provides file system discovery and management utilities.
//
// Discovery lists the tabular exports (CSV, XLSX) found in a scan directory
// in a stable, name-ordered sequence. Manager reads source files and writes
// exports atomically, resolving relative paths against a base directory.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	found, err := discovery.FindTabularFiles("data", []string{".csv", ".xlsx"})
//	if err != nil {
//		return err
//	}
//	for _, f := range found {
//		fmt.Println(f.Name)
//	}
package files
