// Package paths defines the esmini resource layout the compiler writes
// references against.
//
// # Directory Structure
//
//	<resources>/
//	  ├── xodr/     (OpenDRIVE road networks)
//	  └── models/   (scene graphs)
//
// # Usage
//
//	res := paths.Resources{Root: "/opt/esmini/resources"}
//	road := res.Road("e6mini.xodr")  // /opt/esmini/resources/xodr/e6mini.xodr
//
//	if err := paths.ValidateAssetName(name); err != nil {
//	    // reject map contexts that point outside the resources
//	}
package paths
