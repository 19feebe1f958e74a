// Package marker stores the start/finish tags a scenario attaches to cars.
//
// Markers are metadata owned by the scenario driver: the car's transition
// function never reads them. Runners copy a car's marker into the run's
// trajectory metadata so exported runs stay self-describing.
package marker
