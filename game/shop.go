package game

import (
	"time"

	apperrors "github.com/Web3vDev/SolanaRacer/errors"
)

// Shop operations mutate the profile in place. Each returns an AppError
// describing the rejection; a rejected operation changes nothing.

// BuyUpgrade spends points on the next level of an upgrade
func BuyUpgrade(p *Profile, upgradeID int) error {
	for i := range p.Upgrades {
		u := &p.Upgrades[i]
		if u.ID != upgradeID {
			continue
		}
		if u.Maxed() {
			return apperrors.New(apperrors.ErrUpgradeMaxed, "upgrade already at max level")
		}
		cost := u.NextCost()
		if p.Points < cost {
			return apperrors.New(apperrors.ErrInsufficientPoints, "not enough points for upgrade")
		}
		p.Points -= cost
		u.Level++
		SyncEnergyMax(p)
		return nil
	}
	return apperrors.New(apperrors.ErrNotFound, "upgrade not found")
}

// BuyCar spends points on a car. Buying does not equip it.
func BuyCar(p *Profile, carID int) error {
	for i := range p.Cars {
		car := &p.Cars[i]
		if car.ID != carID {
			continue
		}
		if car.Owned {
			return apperrors.New(apperrors.ErrConflict, "car already owned")
		}
		if p.Points < car.Price {
			return apperrors.New(apperrors.ErrInsufficientPoints, "not enough points for car")
		}
		p.Points -= car.Price
		car.Owned = true
		return nil
	}
	return apperrors.New(apperrors.ErrNotFound, "car not found")
}

// EquipCar swaps the equipped flag to an owned car. Exactly one car stays
// equipped at all times.
func EquipCar(p *Profile, carID int) error {
	var target *Car
	for i := range p.Cars {
		if p.Cars[i].ID == carID {
			target = &p.Cars[i]
			break
		}
	}
	if target == nil {
		return apperrors.New(apperrors.ErrNotFound, "car not found")
	}
	if !target.Owned {
		return apperrors.New(apperrors.ErrItemNotOwned, "car not owned")
	}

	for i := range p.Cars {
		p.Cars[i].Equipped = false
	}
	target.Equipped = true
	return nil
}

// UseItem consumes one unit of a consumable and applies its effect
func UseItem(p *Profile, itemID int, now time.Time) error {
	for i := range p.Items {
		item := &p.Items[i]
		if item.ID != itemID {
			continue
		}
		if item.Quantity <= 0 {
			return apperrors.New(apperrors.ErrItemNotOwned, "item not available")
		}

		switch item.Kind {
		case ItemEnergyRestore:
			p.Energy.Remaining = MaxEnergy(p)
		case ItemDoublePoints:
			p.Boost = Boost{Active: true, EndsAt: now.Add(defaultBoostDuration)}
		default:
			return apperrors.New(apperrors.ErrInvalidRequest, "unknown item kind")
		}

		item.Quantity--
		return nil
	}
	return apperrors.New(apperrors.ErrNotFound, "item not found")
}

// GrantItem adds quantity to the inventory, creating the entry from the
// default catalog when missing
func GrantItem(p *Profile, itemID, quantity int) {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			p.Items[i].Quantity += quantity
			return
		}
	}
	for _, tmpl := range DefaultItems() {
		if tmpl.ID == itemID {
			tmpl.Quantity = quantity
			p.Items = append(p.Items, tmpl)
			return
		}
	}
}
