// Package artifact turns a service source tree into the payload submitted to
// the platform at registration time.
//
// # Packaging Steps
//
// Given any path inside a project, Package:
//
//  1. Finds the version-control root enclosing the path (vcs.MarkerFinder by
//     default, vcs.GitFinder on request). A path outside any repository fails
//     with apierr.ErrNotVersionControlled.
//  2. Walks upward from the path to the root, inclusive, looking for
//     metadata.yml or metadata.yaml. The walk never leaves the root; if no
//     descriptor is found it fails with apierr.ErrMetadataNotFound.
//  3. Parses the descriptor (name and type are required, otherwise
//     apierr.ErrInvalidMetadata).
//  4. Archives the entire root, not only the service directory, as tar.gz,
//     leaving out .git, .hg and .svn.
//
// The descriptor path is reported relative to the root because the platform
// looks it up inside the uploaded archive, which always starts at the root:
//
//	repo/                      <- version-control root, archive root
//	├── .git/
//	├── common/util.py
//	└── services/genes/
//	    ├── metadata.yml       <- Artifact.MetadataPath = "services/genes/metadata.yml"
//	    └── main.py
//
// # Example
//
//	art, err := artifact.Package("./services/genes")
//	if err != nil {
//		return fmt.Errorf("failed to package service: %w", err)
//	}
//	fmt.Println(art.Descriptor.Name, art.MetadataPath, len(art.Archive))
//
// # Working Directory
//
// Packaging operates on absolute paths only. It never calls os.Chdir, so the
// process working directory is the same after Package returns, whether it
// succeeded or not.
//
// # Inspecting Archives
//
// ListArchive and ReadArchiveFile read tar and tar.gz blobs, which is handy
// for checking what is about to be uploaded.
package artifact
