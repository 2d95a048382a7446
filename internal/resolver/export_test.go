package resolver

var ParseProcARP = parseProcARP
var ParseArpOutput = parseArpOutput
