package buildinfo
