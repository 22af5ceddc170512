package sanitizer

import "tunestudio/pkg/model"

// NormalizeCars cleans every car and drops entries that are left without a
// make and a model. Cars sharing a VIN are kept once.
func NormalizeCars(cars []model.Car) []model.Car {
	if cars == nil {
		return nil
	}

	seenVIN := make(map[string]struct{}, len(cars))
	out := make([]model.Car, 0, len(cars))

	for _, car := range cars {
		car.Make = NormalizeName(car.Make)
		car.Model = NormalizeName(car.Model)
		car.VIN = NormalizeVIN(car.VIN)

		if car.Make == "" && car.Model == "" {
			continue
		}
		if car.VIN != "" {
			if _, ok := seenVIN[car.VIN]; ok {
				continue
			}
			seenVIN[car.VIN] = struct{}{}
		}
		out = append(out, car)
	}

	return out
}

func NormalizeOrderItems(items []model.OrderItem) []model.OrderItem {
	if items == nil {
		return nil
	}

	out := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		item.Service = NormalizeName(item.Service)
		if item.Service == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
