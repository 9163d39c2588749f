package whispercpp

// EngineName is the registry name of this backend.
const EngineName = "whispercpp"
