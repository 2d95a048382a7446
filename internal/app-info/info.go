package app_info

// NAME the name of this application
const NAME = "ipscannr"

// VERSION the current version of this application
const VERSION = "v0.4.2"
