package log

// Version is the version of the log package API.
const Version = "0.3.0"
