package cli

// Version is set during build time
var Version = "dev"
