package commands

var RunHeadless = runHeadless
